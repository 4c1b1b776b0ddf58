package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{
			name:    "valid request",
			req:     &Request{ID: "abc", Timestamp: "now", Prompt: "a tall elf", Status: StatusPending},
			wantErr: nil,
		},
		{
			name:    "valid request without id or status",
			req:     &Request{Prompt: "a tall elf"},
			wantErr: nil,
		},
		{
			name:    "status check prompt",
			req:     &Request{Prompt: StatusCheckPrompt, Status: StatusPending},
			wantErr: nil,
		},
		{
			name:    "nil request",
			req:     nil,
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "empty prompt",
			req:     &Request{Prompt: ""},
			wantErr: ErrEmptyPrompt,
		},
		{
			name:    "blank prompt",
			req:     &Request{Prompt: "   \t"},
			wantErr: ErrEmptyPrompt,
		},
		{
			name:    "unknown status",
			req:     &Request{Prompt: "an elf", Status: "queued"},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRequest() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateRequest() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRequest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *Response
		wantErr bool
	}{
		{"completed", &Response{Status: StatusCompleted}, false},
		{"error", &Response{Status: StatusError, Message: "boom"}, false},
		{"pending is not terminal", &Response{Status: StatusPending}, true},
		{"empty status", &Response{}, true},
		{"nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(tt.resp)
			if tt.wantErr && err == nil {
				t.Error("ValidateResponse() error = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateResponse() error = %v, want nil", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("ValidateResponse() error = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestValidateCharacterRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *CharacterRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: &CharacterRecord{
				Name:       "mb_male",
				Parameters: map[string]float64{"L1_Asian": 1.0, "L2__Eyes_Size_max": 0},
			},
			wantErr: nil,
		},
		{
			name:    "valid record without parameters",
			record:  &CharacterRecord{Name: "mb_female"},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidCharacter,
		},
		{
			name:    "empty name",
			record:  &CharacterRecord{Name: ""},
			wantErr: ErrEmptyCharacterName,
		},
		{
			name: "value above one",
			record: &CharacterRecord{
				Name:       "mb_male",
				Parameters: map[string]float64{"L1_Asian": 1.5},
			},
			wantErr: ErrValueOutOfRange,
		},
		{
			name: "negative value",
			record: &CharacterRecord{
				Name:       "mb_male",
				Parameters: map[string]float64{"L1_Asian": -0.1},
			},
			wantErr: ErrValueOutOfRange,
		},
		{
			name: "NaN value",
			record: &CharacterRecord{
				Name:       "mb_male",
				Parameters: map[string]float64{"L1_Asian": math.NaN()},
			},
			wantErr: ErrValueOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCharacterRecord(tt.record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCharacterRecord() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCharacterRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGeneration(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Minute)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		gen     *Generation
		wantErr error
	}{
		{
			name:    "valid generation",
			gen:     &Generation{Prompt: "an elf", Status: StatusCompleted, Gender: GenderMale, Timestamp: validTime},
			wantErr: nil,
		},
		{
			name:    "error generation without gender",
			gen:     &Generation{Status: StatusError, Message: "malformed", Timestamp: validTime},
			wantErr: nil,
		},
		{
			name:    "nil generation",
			gen:     nil,
			wantErr: ErrInvalidGeneration,
		},
		{
			name:    "missing status",
			gen:     &Generation{Prompt: "an elf", Timestamp: validTime},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "unknown gender",
			gen:     &Generation{Status: StatusCompleted, Gender: "robot", Timestamp: validTime},
			wantErr: ErrInvalidGender,
		},
		{
			name:    "future timestamp",
			gen:     &Generation{Status: StatusCompleted, Timestamp: futureTime},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeneration(tt.gen)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateGeneration() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateGeneration() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		timestamp time.Time
		want      bool
	}{
		{
			name:      "past timestamp",
			timestamp: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "zero timestamp",
			timestamp: time.Time{},
			want:      true,
		},
		{
			name:      "future timestamp",
			timestamp: time.Now().Add(1 * time.Hour),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTimestamp(tt.timestamp); got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
