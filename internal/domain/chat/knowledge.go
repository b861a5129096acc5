package chat

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge_base.yaml
var defaultKnowledgeBase []byte

// greetingMaxWords bounds how long a message may be and still count as a greeting.
const greetingMaxWords = 4

// Audience selects a fallback phrase set.
type Audience string

const (
	AudiencePublic        Audience = "public"
	AudienceAuthenticated Audience = "authenticated"
)

// Term is a glossary entry.
type Term struct {
	Term       string `yaml:"term"`
	Definition string `yaml:"definition"`
}

// QA is a canned question and its answer.
type QA struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`

	words map[string]struct{}
}

type phraseReply struct {
	Words   []string `yaml:"words"`
	Phrases []string `yaml:"phrases"`
	Reply   string   `yaml:"reply"`
}

// KnowledgeBase answers questions it has a rule for.
type KnowledgeBase struct {
	Greetings    phraseReply `yaml:"greetings"`
	Capabilities phraseReply `yaml:"capabilities"`
	Terms        []Term      `yaml:"terms"`
	Questions    []QA        `yaml:"questions"`
	Fallbacks    struct {
		Public        []string `yaml:"public"`
		Authenticated []string `yaml:"authenticated"`
	} `yaml:"fallbacks"`
}

// DefaultKnowledgeBase parses the knowledge base compiled into the binary.
func DefaultKnowledgeBase() (*KnowledgeBase, error) {
	return ParseKnowledgeBase(defaultKnowledgeBase)
}

// LoadKnowledgeBase reads a knowledge base file; an empty path selects the default.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	if path == "" {
		return DefaultKnowledgeBase()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return ParseKnowledgeBase(data)
}

// ParseKnowledgeBase decodes YAML and prepares it for matching.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if kb.Greetings.Reply == "" || kb.Capabilities.Reply == "" {
		return nil, fmt.Errorf("knowledge base: greeting and capability replies are required")
	}
	if len(kb.Fallbacks.Public) == 0 || len(kb.Fallbacks.Authenticated) == 0 {
		return nil, fmt.Errorf("knowledge base: both fallback sets must be non-empty")
	}

	for i := range kb.Greetings.Words {
		kb.Greetings.Words[i] = Normalize(kb.Greetings.Words[i])
	}
	for i := range kb.Capabilities.Phrases {
		kb.Capabilities.Phrases[i] = Normalize(kb.Capabilities.Phrases[i])
	}
	for i := range kb.Terms {
		kb.Terms[i].Term = Normalize(kb.Terms[i].Term)
	}
	for i := range kb.Questions {
		kb.Questions[i].words = wordSet(Normalize(kb.Questions[i].Question))
	}
	return &kb, nil
}

// Answer applies the rules in order: greeting, capabilities, glossary term,
// best word overlap with a known question.
func (kb *KnowledgeBase) Answer(text string) (string, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", false
	}
	words := wordSet(normalized)

	if len(strings.Fields(normalized)) < greetingMaxWords {
		for _, g := range kb.Greetings.Words {
			if _, ok := words[g]; ok {
				return kb.Greetings.Reply, true
			}
		}
	}

	for _, phrase := range kb.Capabilities.Phrases {
		if phrase != "" && strings.Contains(normalized, phrase) {
			return kb.Capabilities.Reply, true
		}
	}

	for _, t := range kb.Terms {
		if t.Term != "" && strings.Contains(normalized, t.Term) {
			return fmt.Sprintf("📚 %s: %s", strings.ToUpper(t.Term), t.Definition), true
		}
	}

	best, bestScore := -1, 0
	for i, q := range kb.Questions {
		score := 0
		for w := range q.words {
			if _, ok := words[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return kb.Questions[best].Answer, true
	}
	return "", false
}

// FallbackPhrases returns the phrases used when nothing else answered.
func (kb *KnowledgeBase) FallbackPhrases(audience Audience) []string {
	if audience == AudienceAuthenticated {
		return kb.Fallbacks.Authenticated
	}
	return kb.Fallbacks.Public
}
