package domain

import "time"

// Sentinel values distinguishing intentional absence from unhandled failure.
const (
	// NoInformation is returned by the generative service when it does not
	// know the author, and substituted by the adapter on malformed output.
	NoInformation = "no information"

	// NoKnowledgeBaseInfo stands in for an absent knowledge-base summary in
	// synthesis prompts; it never short-circuits the pipeline.
	NoKnowledgeBaseInfo = "no knowledge-base information"

	// AuthorInfoUnavailable marks a fallback adapter failure.
	AuthorInfoUnavailable = "could not retrieve author information"
)

// Category is a book genre.
type Category struct {
	ID   int64
	Name string
}

// Book is a catalog record. AuthorInfo/AuthorWorks are filled by the
// enrichment pipeline after creation: both empty, both sentinel, or both
// real content, never partially populated.
type Book struct {
	ID             int64
	CategoryID     int64
	Title          string
	Author         string
	Description    string
	ISBN           string
	Publisher      string
	Cover          string
	AuthorInfo     string
	AuthorPhoto    string
	AuthorWorks    string
	NarrationAudio string
	PubDate        time.Time
}

// AuthorLookup is the knowledge-base answer for an author name.
// Found reports whether the knowledge base had an article at all.
type AuthorLookup struct {
	Found    bool
	Summary  string
	ImageURL string
	Works    []string
}

// AuthorProfile pairs a biography with a comma-joined works list. The two
// fields travel together through the pipeline.
type AuthorProfile struct {
	Bio   string
	Works string
}

// NoInfoProfile is the sentinel pair substituted for unknown authors and
// unparsable generative output.
func NoInfoProfile() AuthorProfile {
	return AuthorProfile{Bio: NoInformation, Works: NoInformation}
}

// IllustrationPrompt is the generative service's answer for a discussion
// post: mood keywords plus an image-generation prompt.
type IllustrationPrompt struct {
	Keywords string
	Prompt   string
}

// EnrichmentStage enumerates pipeline milestones for logging.
type EnrichmentStage string

const (
	StageCreated          EnrichmentStage = "created"
	StageLookupDone       EnrichmentStage = "lookup_done"
	StageFallbackResolved EnrichmentStage = "fallback_resolved"
	StageScriptBuilt      EnrichmentStage = "script_built"
	StageAudioAttempted   EnrichmentStage = "audio_attempted"
	StagePersisted        EnrichmentStage = "persisted"
)
