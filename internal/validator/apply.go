package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Tone categories the validator detects in draft content. Deliberately coarser
// than the analyzer's categories: drafts rarely carry enough text to separate
// five tones, and the transformation table below is keyed by these three.
var draftTones = []struct {
	Name     string
	Keywords []string
}{
	{"informative", []string{"data", "research", "study", "fact", "shows", "according", "report", "analysis"}},
	{"conversational", []string{"you", "your", "think", "feel", "agree", "right", "honestly", "let's"}},
	{"inspirational", []string{"dream", "believe", "achieve", "grow", "journey", "possible", "never give", "imagine"}},
}

// toneTransitions maps (detected draft tone, snapshot target tone) to the
// phrase prepended during the tone transform. Unmapped pairs are a no-op.
var toneTransitions = map[string]map[string]string{
	"informative": {
		"question":       "Ever wondered?",
		"call_to_action": "Don't just read this:",
		"story":          "Here's what happened:",
	},
	"conversational": {
		"question":  "Quick question:",
		"statement": "Here's the thing:",
		"tip":       "Pro tip:",
	},
	"inspirational": {
		"question":       "What's stopping you?",
		"call_to_action": "Take the first step:",
		"fact":           "The numbers back it up:",
	},
}

// Pools cycled through when the format transform pads element counts up to
// the optimal. Appending only; existing elements are never removed.
var (
	hashtagPool = []string{"#trending", "#growth", "#insights", "#strategy", "#community"}
	emojiPool   = []string{"🔥", "🚀", "💡", "✨", "🎯"}

	hashtagRe = regexp.MustCompile(`#\w+`)
	emojiRe   = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}]`)
)

const (
	lengthFiller       = "."
	maxWordSuggestions = 3
	maxPhraseSuggests  = 2
)

// ApplyPatterns rewrites content toward the patterns in the scope's latest
// snapshot. Each toggled category is applied independently; an empty snapshot
// returns the content unmodified with zero confidence.
func (v *Validator) ApplyPatterns(ctx context.Context, content string, toggles models.PatternToggles, scope string) (*models.AppliedPatternResult, error) {
	result := &models.AppliedPatternResult{
		Content:         content,
		OriginalContent: content,
		Modifications:   make(map[models.PatternKind][]string),
	}
	if !toggles.Any() {
		return result, nil
	}

	snap, err := v.snapshots.Analyze(ctx, scope, 0)
	if err != nil {
		return nil, fmt.Errorf("load snapshot for scope %q: %w", scope, err)
	}
	if snap.Empty() {
		v.logger.WithFields(logging.Fields{"scope": scope}).Warn("No analysis snapshot available, returning content unmodified")
		return result, nil
	}

	var subScores []float64

	if toggles.Length {
		if score, ok := v.applyLength(result, snap); ok {
			subScores = append(subScores, score)
			v.observeApply(models.PatternLength)
		}
	}
	if toggles.Tone {
		if score, ok := v.applyTone(result, snap); ok {
			subScores = append(subScores, score)
			v.observeApply(models.PatternTone)
		}
	}
	if toggles.Format {
		if score, ok := v.applyFormat(result, snap); ok {
			subScores = append(subScores, score)
			v.observeApply(models.PatternFormat)
		}
	}
	if toggles.Content {
		if score, ok := v.suggestContent(result, snap); ok {
			subScores = append(subScores, score)
			v.observeApply(models.PatternContent)
		}
	}

	if len(subScores) > 0 {
		var total float64
		for _, s := range subScores {
			total += s
		}
		result.Confidence = total / float64(len(subScores))
	}
	return result, nil
}

// applyLength truncates over-long content to the optimal range's max and pads
// under-short content to its min. Content already in range is untouched.
func (v *Validator) applyLength(result *models.AppliedPatternResult, snap *models.AnalysisSnapshot) (float64, bool) {
	optimal := snap.LengthPatterns.Optimal
	if optimal == nil {
		return 0, false
	}

	target := optimal.Range
	runes := []rune(result.Content)
	before := len(runes)

	switch {
	case before > target.Max:
		result.Content = string(runes[:target.Max])
		result.Modifications[models.PatternLength] = append(result.Modifications[models.PatternLength],
			fmt.Sprintf("truncated from %d to %d characters", before, target.Max))
	case before < target.Min:
		result.Content += strings.Repeat(lengthFiller, target.Min-before)
		result.Modifications[models.PatternLength] = append(result.Modifications[models.PatternLength],
			fmt.Sprintf("padded from %d to %d characters", before, target.Min))
	}

	after := len([]rune(result.Content))
	result.Applied.Length = &models.LengthApplication{
		Target:         target,
		OriginalLength: before,
		FinalLength:    after,
	}
	return lengthScore(after, target), true
}

// lengthScore is 100 inside the range and decays linearly with distance from
// the nearest bound relative to range width
func lengthScore(length int, target models.LengthRange) float64 {
	if target.Contains(length) {
		return 100
	}
	dist := 0
	if length > target.Max {
		dist = length - target.Max
	} else {
		dist = target.Min - length
	}
	score := 100 * (1 - float64(dist)/float64(target.Width()))
	if score < 0 {
		return 0
	}
	return score
}

func (v *Validator) applyTone(result *models.AppliedPatternResult, snap *models.AnalysisSnapshot) (float64, bool) {
	if len(snap.TonePatterns.Top) == 0 {
		return 0, false
	}
	target := snap.TonePatterns.Top[0]

	from := detectDraftTone(result.Content)
	phrase, ok := toneTransitions[from][target.Tone]
	if !ok {
		return 0, false
	}

	result.Content = phrase + " " + result.Content
	result.Applied.Tone = &models.ToneApplication{
		From:          from,
		To:            target.Tone,
		Effectiveness: target.Effectiveness,
	}
	result.Modifications[models.PatternTone] = append(result.Modifications[models.PatternTone],
		fmt.Sprintf("shifted tone from %s toward %s", from, target.Tone))

	score := target.Effectiveness * 10
	if score > 100 {
		score = 100
	}
	return score, true
}

// detectDraftTone scores the draft against each tone's keyword list and
// returns the highest-scoring tone, earlier categories winning ties. A draft
// matching no keywords has no detectable tone and returns "", which maps to
// no transition.
func detectDraftTone(content string) string {
	text := strings.ToLower(content)
	var best string
	bestHits := 0
	for _, tone := range draftTones {
		hits := 0
		for _, kw := range tone.Keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = tone.Name
			bestHits = hits
		}
	}
	return best
}

func (v *Validator) applyFormat(result *models.AppliedPatternResult, snap *models.AnalysisSnapshot) (float64, bool) {
	application := &models.FormatApplication{}
	var scores []float64

	if adj, score := v.padFormat(result, snap, "hashtags", hashtagRe, hashtagPool); adj != nil {
		application.Hashtags = adj
		scores = append(scores, score)
	}
	if adj, score := v.padFormat(result, snap, "emojis", emojiRe, emojiPool); adj != nil {
		application.Emojis = adj
		scores = append(scores, score)
	}

	if len(scores) == 0 {
		return 0, false
	}
	result.Applied.Format = application

	var total float64
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores)), true
}

// padFormat appends pool tokens until the element count reaches the format's
// optimal. Returns nil when the snapshot has no optimal or the count is
// already sufficient.
func (v *Validator) padFormat(result *models.AppliedPatternResult, snap *models.AnalysisSnapshot, format string, re *regexp.Regexp, pool []string) (*models.FormatAdjustment, float64) {
	stats, ok := snap.FormatPatterns.Formats[format]
	if !ok || stats.OptimalCount == 0 {
		return nil, 0
	}

	before := len(re.FindAllString(result.Content, -1))
	if before >= stats.OptimalCount {
		return nil, 0
	}

	var added []string
	for i := before; i < stats.OptimalCount; i++ {
		added = append(added, pool[(i-before)%len(pool)])
	}
	result.Content = strings.TrimRight(result.Content, " ") + " " + strings.Join(added, " ")
	result.Modifications[models.PatternFormat] = append(result.Modifications[models.PatternFormat],
		fmt.Sprintf("added %d %s", len(added), format))

	score := stats.OptimalAvgEngagement * 10
	if score > 100 {
		score = 100
	}
	return &models.FormatAdjustment{
		Before:        before,
		After:         stats.OptimalCount,
		Optimal:       stats.OptimalCount,
		AvgEngagement: stats.OptimalAvgEngagement,
	}, score
}

// suggestContent picks high-performing words and phrases absent from the
// draft. Suggestions never modify the content string.
func (v *Validator) suggestContent(result *models.AppliedPatternResult, snap *models.AnalysisSnapshot) (float64, bool) {
	text := strings.ToLower(result.Content)
	suggestions := &models.ContentSuggestions{}
	var scores []float64

	for _, w := range snap.ContentPatterns.TopWords {
		if len(suggestions.Words) == maxWordSuggestions {
			break
		}
		if strings.Contains(text, w.Term) {
			continue
		}
		suggestions.Words = append(suggestions.Words, w)
		score := float64(w.Count) * 2
		if score > 100 {
			score = 100
		}
		scores = append(scores, score)
	}
	for _, p := range snap.ContentPatterns.TopPhrases {
		if len(suggestions.Phrases) == maxPhraseSuggests {
			break
		}
		if strings.Contains(text, p.Term) {
			continue
		}
		suggestions.Phrases = append(suggestions.Phrases, p)
		score := float64(p.Count) * 3
		if score > 100 {
			score = 100
		}
		scores = append(scores, score)
	}

	if len(scores) == 0 {
		return 0, false
	}
	result.Applied.Content = suggestions
	for _, w := range suggestions.Words {
		result.Modifications[models.PatternContent] = append(result.Modifications[models.PatternContent],
			fmt.Sprintf("suggested word %q", w.Term))
	}
	for _, p := range suggestions.Phrases {
		result.Modifications[models.PatternContent] = append(result.Modifications[models.PatternContent],
			fmt.Sprintf("suggested phrase %q", p.Term))
	}

	var total float64
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores)), true
}

func (v *Validator) observeApply(kind models.PatternKind) {
	if v.metrics.OnApply != nil {
		v.metrics.OnApply(kind)
	}
}
