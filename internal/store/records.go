// Package store persists programs and generation sessions in SurrealDB.
package store

import (
	"fmt"
	"strings"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mbuchner/millwright/internal/model"
)

// ProgramRecord is a stored NC program. The setup travels as its
// canonical JSON string so the stored form round-trips exactly; the
// scalar columns exist for listing and search.
type ProgramRecord struct {
	ID        surrealmodels.RecordID `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	SetupJSON string                 `json:"setup"`
	Text      string                 `json:"text"`
	Model     string                 `json:"model,omitempty"`
	Revision  int                    `json:"revision"`
	OpCount   int                    `json:"op_count"`
	Material  string                 `json:"material,omitempty"`
	Shape     string                 `json:"shape"`
	Created   time.Time              `json:"created"`
	Updated   time.Time              `json:"updated"`
}

// DecodeSetup parses the stored setup JSON back into a model setup.
func (r *ProgramRecord) DecodeSetup() (*model.Setup, error) {
	return model.DecodeSetup([]byte(r.SetupJSON))
}

// ProgramInput carries everything needed to create or update a program.
type ProgramInput struct {
	Name     string
	Setup    *model.Setup
	Text     string
	Model    string
	Revision int
}

// SessionRecord is one interactive generation session: the prompt
// history, the accumulated setup, and an optional link to the program
// record it was saved as.
type SessionRecord struct {
	ID        surrealmodels.RecordID  `json:"id"`
	Prompts   []string                `json:"prompts"`
	SetupJSON string                  `json:"setup"`
	Revision  int                     `json:"revision"`
	Program   *surrealmodels.RecordID `json:"program,omitempty"`
	Created   time.Time               `json:"created"`
	Updated   time.Time               `json:"updated"`
}

// DecodeSetup parses the stored setup JSON back into a model setup.
func (r *SessionRecord) DecodeSetup() (*model.Setup, error) {
	return model.DecodeSetup([]byte(r.SetupJSON))
}

// SessionInput carries a session upsert.
type SessionInput struct {
	Prompts   []string
	Setup     *model.Setup
	Revision  int
	ProgramID *string
}

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
// Returns an error if the ID is not a string type.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

// MustRecordIDString extracts the string ID, panicking if not a string.
// Use only after DB operations that are known to return string IDs.
func MustRecordIDString(id surrealmodels.RecordID) string {
	s, err := RecordIDString(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Slugify turns a display name into a stable lowercase slug:
// "Flange Plate v2" becomes "flange-plate-v2".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
