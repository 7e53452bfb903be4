package cvextract

import (
	"regexp"
	"strings"
)

// minScoreLength is the shortest text worth scoring. Anything shorter is
// noise by definition and scores zero.
const minScoreLength = 20

// resumeVocabulary is the fixed set of document-domain terms whose presence
// raises confidence that the text is a genuine résumé rather than decoded
// format noise. Matching is case-insensitive; each distinct term counts once.
var resumeVocabulary = []string{
	"experience",
	"education",
	"skills",
	"work",
	"email",
	"phone",
	"name",
	"summary",
	"objective",
	"university",
	"employment",
	"references",
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Score estimates how likely text is genuine readable prose versus format
// noise, on a 0-100 scale, and buckets it with the default cutoffs. The
// function is pure: no side effects, deterministic for identical input.
func Score(text string) (int, Bucket) {
	s := scoreText(text)
	return s, bucketFor(s, DefaultThresholds())
}

// scoreText computes the raw 0-100 score:
//
//	min(100, readabilityRatio*60 + distinctKeywordHits*5 + emailBonus)
//
// where readabilityRatio is the share of characters in the readable class
// and emailBonus is 15 when the text contains an email-address shape.
func scoreText(text string) int {
	if len(text) < minScoreLength {
		return 0
	}

	readable := 0
	for i := 0; i < len(text); i++ {
		if isReadableByte(text[i]) {
			readable++
		}
	}
	ratio := float64(readable) / float64(len(text))

	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range resumeVocabulary {
		if strings.Contains(lower, kw) {
			hits++
		}
	}

	score := ratio*60 + float64(hits)*5
	if emailRe.MatchString(text) {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// isReadableByte reports membership in [A-Za-z0-9 .,;:!?()@-].
func isReadableByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case ' ', '.', ',', ';', ':', '!', '?', '(', ')', '@', '-':
		return true
	}
	return false
}

// bucketFor classifies a score against the configured cutoffs.
func bucketFor(score int, th Thresholds) Bucket {
	switch {
	case score >= th.BucketHigh:
		return BucketHigh
	case score >= th.BucketMedium:
		return BucketMedium
	default:
		return BucketLow
	}
}
