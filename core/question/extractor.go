package question

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	// numbered fragments this short (trimmed, markup included) are noise
	minFragmentLen = 50
	// a plain-text choice is kept only if "X) text" spans at least this many runes
	minPlainChoiceEntry = 6
)

// Extract returns every question recognized in blob, in document order.
// It is best-effort: fragments that do not yield a prompt, five choices and a
// correct label are dropped silently. Extract never fails and is safe for concurrent use.
func Extract(blob string) []Extracted {
	questions := make([]Extracted, 0)
	for _, frag := range segment(blob) {
		if q, ok := extractFragment(frag); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

func extractFragment(frag string) (Extracted, bool) {
	prompt := findPrompt(frag)
	if prompt == "" {
		return Extracted{}, false
	}
	choices, ok := findChoices(frag)
	if !ok {
		return Extracted{}, false
	}
	label, ok := findCorrectLabel(frag)
	if !ok {
		return Extracted{}, false
	}
	return Extracted{Prompt: prompt, Choices: choices, CorrectLabel: label}, true
}

// Segmentation

// segmenters are tried in order; the first one yielding fragments wins.
var segmenters = []func(blob string) []string{
	splitByContainer,
	splitByNumbering,
	wholeBlob,
}

var (
	containerClassRe = regexp.MustCompile(`(?i)\b(?:questao|question)\b`)
	numberMarkerRe   = regexp.MustCompile(`\d+\)`)
	openingTagsRe    = regexp.MustCompile(`(?:<[A-Za-z][^<>]*>\s*)+$`)
)

func segment(blob string) []string {
	for _, split := range segmenters {
		if frags := split(blob); len(frags) > 0 {
			return frags
		}
	}
	return nil
}

// splitByContainer returns the inner markup of each question container.
// Nested divs are balanced; a container left open at the end of blob is ignored.
func splitByContainer(blob string) []string {
	var frags []string
	z := html.NewTokenizer(strings.NewReader(blob))
	offset, start, depth := 0, 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return frags
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "div" {
				break
			}
			if depth > 0 {
				depth++
			} else if hasAttr && isQuestionContainer(z) {
				depth, start = 1, offset+n
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if depth > 0 && string(name) == "div" {
				if depth--; depth == 0 {
					frags = append(frags, blob[start:offset])
				}
			}
		}
		offset += n
	}
}

func isQuestionContainer(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" && containerClassRe.Match(val) {
			return true
		}
		if !more {
			return false
		}
	}
}

// splitByNumbering cuts blob in front of every top-level "N)" marker, pulling the
// opening tags that immediately precede a marker into its fragment.
func splitByNumbering(blob string) []string {
	cuts := []int{0}
	for _, loc := range numberMarkerRe.FindAllStringIndex(blob, -1) {
		start := loc[0]
		if !atTopLevel(blob, start) {
			continue
		}
		last := cuts[len(cuts)-1]
		if m := openingTagsRe.FindStringIndex(blob[last:start]); m != nil {
			start = last + m[0]
		}
		if start > last {
			cuts = append(cuts, start)
		}
	}
	if len(cuts) == 1 {
		return nil
	}
	cuts = append(cuts, len(blob))

	var frags []string
	for i := 0; i < len(cuts)-1; i++ {
		frag := blob[cuts[i]:cuts[i+1]]
		if utf8.RuneCountInString(strings.TrimSpace(frag)) > minFragmentLen {
			frags = append(frags, frag)
		}
	}
	return frags
}

func wholeBlob(blob string) []string {
	if strings.TrimSpace(blob) == "" {
		return nil
	}
	return []string{blob}
}

// Prompt

var promptFinders = []func(frag string) string{
	promptAfterBoldNumber,
	promptInNumberedParagraph,
	promptAfterPlainNumber,
}

var (
	boldNumberRe        = regexp.MustCompile(`(?i)<(?:strong|b)>\s*\d+\)\s*</(?:strong|b)>\s*`)
	boldPromptEndRe     = regexp.MustCompile(`(?i:<ul|<ol|<li|<p[\s>]|<em[\s>])|A\)|(?i:resposta|gabarito)\s*:`)
	numberedParagraphRe = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>\s*\d+\)\s*(.+?)</p\s*>`)
	plainNumberRe       = regexp.MustCompile(`^\s*\d+\)\s*(?:</?(?i:strong|b|em|i|u|span)(?:\s[^>]*)?>\s*)*`)
	plainPromptEndRe    = regexp.MustCompile(`\n|<|A\)|B\)|(?i:resposta|gabarito)\s*:`)
)

func findPrompt(frag string) string {
	for _, find := range promptFinders {
		if p := find(frag); p != "" {
			return p
		}
	}
	return ""
}

// promptAfterBoldNumber reads from a bold "N)" up to the first list, paragraph,
// emphasis, "A)" or answer line.
func promptAfterBoldNumber(frag string) string {
	for _, loc := range boldNumberRe.FindAllStringIndex(frag, -1) {
		if text, ok := captureUntil(frag[loc[1]:], boldPromptEndRe); ok {
			if p := stripMarkup(text); p != "" {
				return p
			}
		}
	}
	return ""
}

func promptInNumberedParagraph(frag string) string {
	for _, m := range numberedParagraphRe.FindAllStringSubmatch(frag, -1) {
		if p := stripMarkup(m[1]); p != "" {
			return p
		}
	}
	return ""
}

// promptAfterPlainNumber handles fragments starting with a bare "N)".
func promptAfterPlainNumber(frag string) string {
	loc := plainNumberRe.FindStringIndex(frag)
	if loc == nil {
		return ""
	}
	if text, ok := captureUntil(frag[loc[1]:], plainPromptEndRe); ok {
		return stripMarkup(text)
	}
	return ""
}

// captureUntil returns the text of s before the first match of end, which
// must start after at least one rune.
func captureUntil(s string, end *regexp.Regexp) (string, bool) {
	if s == "" {
		return "", false
	}
	_, size := utf8.DecodeRuneInString(s)
	loc := end.FindStringIndex(s[size:])
	if loc == nil {
		return "", false
	}
	return s[:size+loc[0]], true
}

// Choices

// choiceFinders are all applied in order; a label keeps the first text found for it.
var choiceFinders = []func(frag string, found map[Label]string){
	choicesInElements(listItemRe),
	choicesInElements(paragraphRe),
	choicesInPlainText,
}

var (
	listItemRe      = elementRe("li")
	paragraphRe     = elementRe("p")
	labelledRe      = regexp.MustCompile(`(?s)^\s*(?:<(?i:strong|b|em|span)(?:\s[^>]*)?>\s*)*([A-E])\)\s*(?:</(?i:strong|b|em|span)>\s*)*(.+)$`)
	plainLabelRe    = regexp.MustCompile(`([A-E])\)`)
	answerKeywordRe = regexp.MustCompile(`(?i)(?:resposta|gabarito)\s*:`)
)

// elementRe matches an opening tag and captures its content up to the closing tag,
// the next opening tag of the same element, or the end of input.
func elementRe(tag string) *regexp.Regexp {
	open := `<(?i:` + tag + `)(?:\s[^>]*)?>`
	return regexp.MustCompile(`(?s)` + open + `(.*?)(?:</(?i:` + tag + `)\s*>|` + open + `|\z)`)
}

func findChoices(frag string) (Choices, bool) {
	found := make(map[Label]string, len(Labels))
	for _, find := range choiceFinders {
		if len(found) == len(Labels) {
			break
		}
		find(frag, found)
	}
	if len(found) != len(Labels) {
		return Choices{}, false
	}

	var choices Choices
	for l, text := range found {
		choices.Set(l, text)
	}
	return choices, true
}

func addChoice(found map[Label]string, letter, text string) {
	l := Label(strings.ToLower(letter))
	if _, ok := found[l]; ok {
		return
	}
	if text = stripMarkup(text); text != "" {
		found[l] = text
	}
}

// choicesInElements collects "X) text" written as the whole content of an element.
func choicesInElements(re *regexp.Regexp) func(string, map[Label]string) {
	return func(frag string, found map[Label]string) {
		for pos := 0; pos < len(frag); {
			loc := re.FindStringSubmatchIndex(frag[pos:])
			if loc == nil {
				return
			}
			content := frag[pos+loc[2] : pos+loc[3]]
			if m := labelledRe.FindStringSubmatch(content); m != nil {
				addChoice(found, m[1], m[2])
			}
			pos += loc[3] // an unclosed element ends where the next one starts
		}
	}
}

// choicesInPlainText scans the visible text for "X)" labels. A choice runs to
// the next label or answer line.
func choicesInPlainText(frag string, found map[Label]string) {
	text := stripMarkup(frag)

	var locs [][]int
	for _, loc := range plainLabelRe.FindAllStringSubmatchIndex(text, -1) {
		if !precededByAlnum(text, loc[0]) {
			locs = append(locs, loc)
		}
	}

	for i, loc := range locs {
		start, end := loc[1], len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if stop := answerKeywordRe.FindStringIndex(text[start:end]); stop != nil {
			end = start + stop[0]
		}
		letter := text[loc[2]:loc[3]]
		choice := strings.TrimSpace(text[start:end])
		if utf8.RuneCountInString(letter+") "+choice) < minPlainChoiceEntry {
			continue
		}
		addChoice(found, letter, choice)
	}
}

// Correct label

var (
	answerBlockRe = regexp.MustCompile(`(?i)<(?:p|em)(?:\s[^>]*)?>\s*(?:<(?:em|strong|b|span)(?:\s[^>]*)?>\s*)*(?:resposta|gabarito)\s*:\s*(?:</?(?:em|strong|b|span)>\s*)*([a-e])(?:$|[^\p{L}\p{N}])`)
	answerLineRe  = regexp.MustCompile(`(?i)(?:resposta|gabarito)\s*:\s*(?:</?(?:em|strong|b|span)>\s*)*([a-e])(?:$|[^\p{L}\p{N}])`)
)

func findCorrectLabel(frag string) (Label, bool) {
	for _, re := range []*regexp.Regexp{answerBlockRe, answerLineRe} {
		if m := re.FindStringSubmatch(frag); m != nil {
			return ParseLabel(m[1])
		}
	}
	return "", false
}

// atTopLevel reports whether a marker at i opens blob, follows whitespace or closes a tag.
// This rules out "f(2)", "x2)" or "[3)".
func atTopLevel(blob string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(blob[:i])
	return r == '>' || unicode.IsSpace(r)
}

func precededByAlnum(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
