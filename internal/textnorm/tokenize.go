package textnorm

import "strings"

// stopWords are Portuguese function words excluded from token extraction.
var stopWords = map[string]struct{}{
	"que": {}, "com": {}, "para": {}, "por": {}, "uma": {}, "umas": {},
	"uns": {}, "dos": {}, "das": {}, "nos": {}, "nas": {}, "pelo": {},
	"pela": {}, "este": {}, "esta": {}, "esse": {}, "essa": {}, "isso": {},
	"mais": {}, "mas": {}, "tem": {}, "ter": {}, "ser": {}, "sim": {},
	"nao": {}, "qual": {}, "quais": {}, "quando": {}, "onde": {}, "como": {},
	"meu": {}, "minha": {}, "seu": {}, "sua": {}, "voce": {}, "voces": {},
	"ela": {}, "ele": {}, "aqui": {}, "ali": {}, "bem": {}, "muito": {},
}

// minTokenLen excludes short connective tokens ("de", "o", "a", "e").
const minTokenLen = 3

// Tokenize splits an already-normalized string into significant tokens,
// dropping stop-words and tokens shorter than three characters.
func Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if len(f) < minTokenLen {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
