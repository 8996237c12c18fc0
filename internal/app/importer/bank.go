package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// Bank is one pre-shaped dictionary bank file: the dictionary title plus
// its term, meta and tag rows.
type Bank struct {
	Title string    `json:"title"`
	Terms []TermRow `json:"terms"`
	Meta  []MetaRow `json:"meta"`
	Tags  []TagRow  `json:"tags"`
}

// TermRow is one term entry as stored in a bank file. A missing sequence
// means the row belongs to no headword group.
type TermRow struct {
	Expression     string          `json:"expression"`
	Reading        string          `json:"reading"`
	DefinitionTags *string         `json:"definitionTags"`
	TermTags       *string         `json:"termTags"`
	Rules          *string         `json:"rules"`
	Score          int             `json:"score"`
	Glossary       json.RawMessage `json:"glossary"`
	Sequence       *int64          `json:"sequence"`
}

// MetaRow is one frequency/pitch/transcription side-table row.
type MetaRow struct {
	Expression string          `json:"expression"`
	Mode       string          `json:"mode"`
	Data       json.RawMessage `json:"data"`
}

// TagRow is one tag definition.
type TagRow struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Order    int    `json:"order"`
	Notes    string `json:"notes"`
	Score    int    `json:"score"`
}

// ReadBank loads and validates one bank file.
func ReadBank(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bank file: %w", err)
	}
	defer f.Close()

	var bank Bank
	if err := json.NewDecoder(f).Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode bank file %s: %w", path, err)
	}
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("bank file %s: %w", path, err)
	}
	return &bank, nil
}

// Validate checks the structural requirements of the bank.
func (b *Bank) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return errors.New("title is required")
	}
	for i, t := range b.Terms {
		if t.Expression == "" {
			return fmt.Errorf("terms[%d]: expression is required", i)
		}
	}
	for i, m := range b.Meta {
		if m.Expression == "" {
			return fmt.Errorf("meta[%d]: expression is required", i)
		}
		if !domain.MetaMode(m.Mode).IsValid() {
			return fmt.Errorf("meta[%d]: unknown mode %q", i, m.Mode)
		}
	}
	for i, t := range b.Tags {
		if t.Name == "" {
			return fmt.Errorf("tags[%d]: name is required", i)
		}
	}
	return nil
}

// TermEntries converts the term rows into domain entries carrying the bank
// title as their dictionary. Ids stay unset so the store assigns them.
func (b *Bank) TermEntries() []domain.TermEntry {
	entries := make([]domain.TermEntry, 0, len(b.Terms))
	for _, t := range b.Terms {
		seq := domain.SequenceUngrouped
		if t.Sequence != nil {
			seq = *t.Sequence
		}
		entries = append(entries, domain.TermEntry{
			Dictionary:     b.Title,
			Expression:     t.Expression,
			Reading:        t.Reading,
			DefinitionTags: t.DefinitionTags,
			TermTags:       t.TermTags,
			Rules:          t.Rules,
			Score:          t.Score,
			Glossary:       domain.ParseGlossary(t.Glossary),
			Sequence:       seq,
		})
	}
	return entries
}

// MetaRows converts the meta rows into domain side-table rows.
func (b *Bank) MetaRows() []domain.TermMeta {
	metas := make([]domain.TermMeta, 0, len(b.Meta))
	for _, m := range b.Meta {
		metas = append(metas, domain.TermMeta{
			Dictionary: b.Title,
			Expression: m.Expression,
			Mode:       domain.MetaMode(m.Mode),
			Data:       m.Data,
		})
	}
	return metas
}

// TagRows converts the tag rows into domain tag definitions.
func (b *Bank) TagRows() []domain.Tag {
	tags := make([]domain.Tag, 0, len(b.Tags))
	for _, t := range b.Tags {
		tags = append(tags, domain.Tag{
			Dictionary: b.Title,
			Name:       t.Name,
			Category:   t.Category,
			Order:      t.Order,
			Notes:      t.Notes,
			Score:      t.Score,
		})
	}
	return tags
}
