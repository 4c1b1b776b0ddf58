package core

import (
	"encoding/binary"
	"maps"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// StatusCheckPrompt is sent by requesters probing whether a bridge is alive.
// It carries no keywords, so processing it changes no parameters.
const StatusCheckPrompt = "__STATUS_CHECK__"

// Status is the state carried by exchange documents.
type Status string

const (
	// StatusPending marks a request that has not been picked up yet.
	StatusPending Status = "pending"
	// StatusCompleted marks a successfully processed request.
	StatusCompleted Status = "completed"
	// StatusError marks a request whose processing failed.
	StatusError Status = "error"
)

// Gender selects which character object a prompt is applied to.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParameterSet maps final parameter (shape key) names to activation values.
// It is built per request and discarded after application.
type ParameterSet map[string]float64

// Names returns the parameter names in sorted order.
func (p ParameterSet) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Clone returns an independent copy of the set.
func (p ParameterSet) Clone() ParameterSet {
	if p == nil {
		return ParameterSet{}
	}
	return maps.Clone(p)
}

// Request is the document a producer drops into the exchange.
// Timestamp and Status are informational; Prompt is required.
type Request struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
	Prompt    string `json:"prompt"`
	Status    Status `json:"status"`
}

// Response is the document the bridge writes after handling a request.
type Response struct {
	ID         string   `json:"id,omitempty"`
	Timestamp  string   `json:"timestamp"`
	Prompt     string   `json:"prompt,omitempty"`
	Status     Status   `json:"status"`
	Message    string   `json:"message"`
	Parameters []string `json:"parameters,omitempty"`
}

// Timestamp formats t the way exchange documents carry it.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}

// CharacterRecord is the persisted state of one character object:
// every parameter it exposes and its current value.
type CharacterRecord struct {
	Id         ID                 `json:"id"`
	Name       string             `json:"name"`
	Parameters map[string]float64 `json:"parameters"`
	InsertedAt time.Time          `json:"inserted_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Generation records one processed request for later inspection.
type Generation struct {
	Id        ID                 `json:"id"`
	RequestID string             `json:"request_id,omitempty"`
	Prompt    string             `json:"prompt"`
	Target    string             `json:"target,omitempty"`
	Gender    Gender             `json:"gender,omitempty"`
	Category  string             `json:"category,omitempty"`
	Status    Status             `json:"status"`
	Message   string             `json:"message,omitempty"`
	Applied   map[string]float64 `json:"applied,omitempty"`
	Missing   []string           `json:"missing,omitempty"`
	Timestamp time.Time          `json:"timestamp"` // When the request was processed
}
