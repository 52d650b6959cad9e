// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import "strings"

// repairJSON fixes the two mistakes small models make most often in a flat
// JSON object: a key missing its opening quote (`{sql": ...}`) and a
// trailing comma before the closing brace. String values are copied
// verbatim, so SQL text inside them is never touched.
func repairJSON(s string) string {
	src := []rune(strings.TrimSpace(s))
	out := make([]rune, 0, len(src)+8)

	inString := false
	escaped := false
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)
		case '{', ',':
			out = append(out, ch)
			// Copy whitespace, then look for an unquoted key ending in `":`
			j := i + 1
			for j < len(src) && isSpace(src[j]) {
				out = append(out, src[j])
				j++
			}
			k := j
			for k < len(src) && (isLetter(src[k]) || src[k] == '_') {
				k++
			}
			if k > j && k+1 < len(src) && src[k] == '"' && src[k+1] == ':' {
				out = append(out, '"')
				out = append(out, src[j:k]...)
				out = append(out, '"', ':')
				i = k + 1
				continue
			}
			i = j - 1
		case '}':
			// Drop a trailing comma left before the closing brace
			n := len(out) - 1
			for n >= 0 && isSpace(out[n]) {
				n--
			}
			if n >= 0 && out[n] == ',' {
				out = append(out[:n], out[n+1:]...)
			}
			out = append(out, ch)
		default:
			out = append(out, ch)
		}
	}

	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
