package engine

import (
	"math/rand"
	"strings"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// Emotion is the tone tag attached to a buyer response.
type Emotion string

const (
	EmotionFrustrated Emotion = "frustrated"
	EmotionSkeptical  Emotion = "skeptical"
	EmotionConcerned  Emotion = "concerned"
	EmotionHappy      Emotion = "happy"
	EmotionNeutral    Emotion = "neutral"
)

// InterruptionReason identifies why the buyer cut in.
type InterruptionReason string

const (
	ReasonAgentMonologue  InterruptionReason = "agent_monologue"
	ReasonAgentSilence    InterruptionReason = "agent_silence"
	ReasonAgentRepetition InterruptionReason = "agent_repetition"
	ReasonQuestionIgnored InterruptionReason = "question_ignored"
)

// InterruptionContext carries the live signals the interruption decision is
// made from. Computed fresh per evaluation, never persisted.
type InterruptionContext struct {
	AgentSpeakingDuration float64
	SilenceDuration       float64
	RepetitionCount       int
	BuyerQuestionIgnored  bool
	Personality           string
	ResistanceLevel       string
}

// InterruptionDecision is the outcome of an interruption check.
type InterruptionDecision struct {
	ShouldInterrupt bool
	Reason          InterruptionReason
	Phrase          string
}

// BehaviorConfig holds the tunable windows and thresholds of the behavior
// model. RepetitionWindow is how many prior trainee utterances the repetition
// and ignored-question checks look back over; 5 matches observed trainer
// behavior but has no derived rationale, so it stays configurable.
type BehaviorConfig struct {
	RepetitionWindow    int
	SilenceThreshold    float64
	RepetitionThreshold int
	SimilarityCutoff    float64
	DefaultPatience     float64
}

// DefaultBehaviorConfig returns the production thresholds.
func DefaultBehaviorConfig() BehaviorConfig {
	return BehaviorConfig{
		RepetitionWindow:    5,
		SilenceThreshold:    10,
		RepetitionThreshold: 3,
		SimilarityCutoff:    0.6,
		DefaultPatience:     45,
	}
}

// patienceThresholds is how long (seconds) each personality tolerates an
// uninterrupted agent monologue.
var patienceThresholds = map[string]float64{
	entities.PersonalityFriendly:   60,
	entities.PersonalityCautious:   50,
	entities.PersonalityNervous:    40,
	entities.PersonalitySkeptical:  35,
	entities.PersonalityDominant:   30,
	entities.PersonalityDistracted: 25,
}

// Emotion cue tiers, evaluated in priority order. The first tier with a match
// wins and lower tiers are not evaluated.
var (
	frustrationCues = []string{
		"frustrat", "annoy", "ridiculous", "waste of time",
		"are you even listening", "i already told you", "this is getting old",
	}
	skepticismCues = []string{
		"not sure i believe", "sounds too good", "i doubt",
		"prove it", "heard that before", "really?",
	}
	concernCues = []string{
		"worried", "concern", "nervous about", "afraid",
		"what if we can't", "risky", "stretch for us",
	}
	happyCues = []string{
		"that's great", "love that", "perfect", "excellent",
		"wonderful", "so excited", "amazing",
	}
)

// personalityDefaultEmotion is the fallback tone when no cue tier matches.
var personalityDefaultEmotion = map[string]Emotion{
	entities.PersonalityNervous:   EmotionConcerned,
	entities.PersonalitySkeptical: EmotionSkeptical,
}

// interruptionPhrases maps (personality, reason) to the canned lines the buyer
// uses when cutting in. Unknown personalities fall back to the cautious
// monologue entry, so every valid pair yields a non-empty phrase.
var interruptionPhrases = map[string]map[InterruptionReason][]string{
	entities.PersonalityFriendly: {
		ReasonAgentMonologue:  {"Sorry to jump in, but that's a lot to take in at once!", "Hold on, can we slow down a little?"},
		ReasonAgentSilence:    {"You still there? We were really curious what you think.", "Hello? Did we lose you?"},
		ReasonAgentRepetition: {"I think you mentioned that already, right?", "We covered that one, didn't we?"},
		ReasonQuestionIgnored: {"Sorry, but we asked you something a minute ago.", "Before we move on, could you answer our question?"},
	},
	entities.PersonalityCautious: {
		ReasonAgentMonologue:  {"Hold on, that's a lot of information. Can we take a step back?", "Wait, I need a moment to think about all this."},
		ReasonAgentSilence:    {"Are you still with us? We were waiting on you.", "Is everything alright on your end?"},
		ReasonAgentRepetition: {"You've said that a couple of times now.", "I believe we already went over that."},
		ReasonQuestionIgnored: {"I don't think you answered what we asked.", "Can we go back to our question first?"},
	},
	entities.PersonalityDominant: {
		ReasonAgentMonologue:  {"Stop. Get to the point.", "I don't have time for the full pitch. What's the bottom line?"},
		ReasonAgentSilence:    {"Hello? I don't have all day.", "Are we doing this or not?"},
		ReasonAgentRepetition: {"You're repeating yourself. Move on.", "Third time you've said that. Next."},
		ReasonQuestionIgnored: {"I asked you a question. Answer it.", "Don't dodge. What about what I asked?"},
	},
	entities.PersonalityDistracted: {
		ReasonAgentMonologue:  {"Sorry, what? I zoned out for a second there.", "Hang on, my phone was buzzing. Where were we?"},
		ReasonAgentSilence:    {"Oh, are you waiting on me? Sorry.", "Wait, whose turn was it to talk?"},
		ReasonAgentRepetition: {"Didn't you say that already? Or am I mixing things up?", "This sounds familiar..."},
		ReasonQuestionIgnored: {"Wait, did you ever answer what I asked?", "Hmm, I think my question got lost somewhere."},
	},
	entities.PersonalityNervous: {
		ReasonAgentMonologue:  {"Sorry, um, this is a lot. Can we pause for a second?", "I'm getting a little overwhelmed, honestly."},
		ReasonAgentSilence:    {"Um... hello? Did I say something wrong?", "Is everything okay? It went quiet."},
		ReasonAgentRepetition: {"I think... you said that before? Sorry if I'm wrong.", "Haven't we talked about that already?"},
		ReasonQuestionIgnored: {"Sorry, I really need to know the thing I asked about.", "Um, about my question earlier..."},
	},
	entities.PersonalitySkeptical: {
		ReasonAgentMonologue:  {"Okay, that's quite the speech. What aren't you telling me?", "Lots of words. Where's the catch?"},
		ReasonAgentSilence:    {"Silence, huh. Thinking up an answer?", "Still there, or did I ask something inconvenient?"},
		ReasonAgentRepetition: {"You keep saying the same thing. That's usually a tell.", "Repeating it doesn't make it more convincing."},
		ReasonQuestionIgnored: {"Interesting how you skipped my question.", "You didn't answer me. Why is that?"},
	},
}

// BehaviorModel decides interruption and emotional-tone outcomes for the
// simulated buyer. Both decisions are pure functions of their inputs; the only
// state is the immutable config and the phrase RNG.
type BehaviorModel struct {
	cfg BehaviorConfig
	rng *rand.Rand
}

// NewBehaviorModel builds a model with the given tunables. A nil-safe seed is
// taken from the global source; phrase choice is not required to be
// deterministic.
func NewBehaviorModel(cfg BehaviorConfig) *BehaviorModel {
	if cfg.RepetitionWindow <= 0 {
		cfg.RepetitionWindow = 5
	}
	if cfg.SilenceThreshold <= 0 {
		cfg.SilenceThreshold = 10
	}
	if cfg.RepetitionThreshold <= 0 {
		cfg.RepetitionThreshold = 3
	}
	if cfg.SimilarityCutoff <= 0 {
		cfg.SimilarityCutoff = 0.6
	}
	if cfg.DefaultPatience <= 0 {
		cfg.DefaultPatience = 45
	}
	return &BehaviorModel{
		cfg: cfg,
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
}

// ClassifyEmotion tags a buyer response with a tone. Cue tiers are evaluated
// in fixed priority order: frustration, skepticism, concern, happy, then the
// personality default, then neutral.
func (m *BehaviorModel) ClassifyEmotion(response, personality string) Emotion {
	lower := strings.ToLower(response)

	for _, cue := range frustrationCues {
		if strings.Contains(lower, cue) {
			return EmotionFrustrated
		}
	}
	for _, cue := range skepticismCues {
		if strings.Contains(lower, cue) {
			return EmotionSkeptical
		}
	}
	for _, cue := range concernCues {
		if strings.Contains(lower, cue) {
			return EmotionConcerned
		}
	}
	for _, cue := range happyCues {
		if strings.Contains(lower, cue) {
			return EmotionHappy
		}
	}
	if emo, ok := personalityDefaultEmotion[personality]; ok {
		return emo
	}
	return EmotionNeutral
}

// ShouldInterrupt evaluates the trigger conditions in fixed priority order and
// returns on the first match: monologue, silence, repetition, ignored question.
func (m *BehaviorModel) ShouldInterrupt(ctx InterruptionContext) InterruptionDecision {
	patience, ok := patienceThresholds[ctx.Personality]
	if !ok {
		patience = m.cfg.DefaultPatience
	}

	switch {
	case ctx.AgentSpeakingDuration > patience:
		return m.decide(ctx.Personality, ReasonAgentMonologue)
	case ctx.SilenceDuration > m.cfg.SilenceThreshold:
		return m.decide(ctx.Personality, ReasonAgentSilence)
	case ctx.RepetitionCount >= m.cfg.RepetitionThreshold:
		return m.decide(ctx.Personality, ReasonAgentRepetition)
	case ctx.BuyerQuestionIgnored:
		return m.decide(ctx.Personality, ReasonQuestionIgnored)
	}
	return InterruptionDecision{}
}

func (m *BehaviorModel) decide(personality string, reason InterruptionReason) InterruptionDecision {
	return InterruptionDecision{
		ShouldInterrupt: true,
		Reason:          reason,
		Phrase:          m.pickPhrase(personality, reason),
	}
}

// pickPhrase selects a phrase uniformly at random from the (personality,
// reason) table, falling back to the cautious monologue entry so the result is
// never empty.
func (m *BehaviorModel) pickPhrase(personality string, reason InterruptionReason) string {
	table, ok := interruptionPhrases[personality]
	if !ok {
		table = interruptionPhrases[entities.PersonalityCautious]
	}
	phrases := table[reason]
	if len(phrases) == 0 {
		phrases = interruptionPhrases[entities.PersonalityCautious][ReasonAgentMonologue]
	}
	return phrases[m.rng.Intn(len(phrases))]
}

// RepetitionCount compares the latest trainee utterance against up to the
// previous RepetitionWindow trainee utterances and counts how many exceed the
// similarity cutoff.
func (m *BehaviorModel) RepetitionCount(latest string, previous []string) int {
	start := 0
	if len(previous) > m.cfg.RepetitionWindow {
		start = len(previous) - m.cfg.RepetitionWindow
	}

	count := 0
	for _, prior := range previous[start:] {
		if WordOverlapSimilarity(latest, prior) > m.cfg.SimilarityCutoff {
			count++
		}
	}
	return count
}

// QuestionIgnored reports whether the buyer's last utterance asked a question
// whose significant words the trainee's reply failed to pick up.
func (m *BehaviorModel) QuestionIgnored(buyerLast, traineeReply string) bool {
	if !strings.Contains(buyerLast, "?") {
		return false
	}

	keywords := significantWords(buyerLast)
	if len(keywords) == 0 {
		return false
	}

	replyWords := make(map[string]bool)
	for w := range significantWords(traineeReply) {
		replyWords[w] = true
	}

	echoed := 0
	for w := range keywords {
		if replyWords[w] {
			echoed++
		}
	}

	required := 2
	if len(keywords) < required {
		required = len(keywords)
	}
	return echoed < required
}

// WordOverlapSimilarity returns the intersection-over-union of the significant
// word sets of a and b. Symmetric, always in [0,1].
func WordOverlapSimilarity(a, b string) float64 {
	setA := significantWords(a)
	setB := significantWords(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// significantWords lowercases text and keeps words longer than 3 characters.
func significantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()")
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}
