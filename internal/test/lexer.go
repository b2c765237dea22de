package test

import (
	"math/rand"
	"strings"
)

const validTokens = "fn;main;let;mut;struct;while;loop;if;else;return;break;true;false;(;);{;};[;];,;:;.;->;" +
	"\"this is a string\";\"this is a longer string containing a bunch of text: Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.\";\"\";\"escaped \\\"quote\\\"\";" +
	"+;-;*;/;=;==;!=;<;>;&&;||;123;321;3.14;0.5;identifier;snake_case_name;_private;// comment\n;\n"

// GetRandomTokens returns size random, individually valid tokens separated by spaces.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
