// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.




package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for the stored records. Fields are written in declaration
// order; times are Unix microseconds.
var (
	IDMUS              = idMUS{}
	CharacterRecordMUS = characterRecordMUS{}
	GenerationMUS      = generationMUS{}

	parametersMUS = ord.NewMapSer[string, float64](ord.String, raw.Float64)
	namesMUS      = ord.NewSliceSer[string](ord.String)
	timeMUS       = timeMicroMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type timeMicroMUS struct{}

func (s timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (s timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func (s timeMicroMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

type characterRecordMUS struct{}

func (s characterRecordMUS) Marshal(v CharacterRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += parametersMUS.Marshal(v.Parameters, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return n + timeMUS.Marshal(v.UpdatedAt, bs[n:])
}

func (s characterRecordMUS) Unmarshal(bs []byte) (v CharacterRecord, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Parameters, n1, err = parametersMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s characterRecordMUS) Size(v CharacterRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += parametersMUS.Size(v.Parameters)
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.UpdatedAt)
}

func (s characterRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type generationMUS struct{}

func (s generationMUS) Marshal(v Generation, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.RequestID, bs[n:])
	n += ord.String.Marshal(v.Prompt, bs[n:])
	n += ord.String.Marshal(v.Target, bs[n:])
	n += ord.String.Marshal(string(v.Gender), bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += ord.String.Marshal(v.Message, bs[n:])
	n += parametersMUS.Marshal(v.Applied, bs[n:])
	n += namesMUS.Marshal(v.Missing, bs[n:])
	return n + timeMUS.Marshal(v.Timestamp, bs[n:])
}

func (s generationMUS) Unmarshal(bs []byte) (v Generation, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1   int
		text string
	)
	v.RequestID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Prompt, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Target, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Gender = Gender(text)
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = Status(text)
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Applied, n1, err = parametersMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Missing, n1, err = namesMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s generationMUS) Size(v Generation) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.RequestID)
	size += ord.String.Size(v.Prompt)
	size += ord.String.Size(v.Target)
	size += ord.String.Size(string(v.Gender))
	size += ord.String.Size(v.Category)
	size += ord.String.Size(string(v.Status))
	size += ord.String.Size(v.Message)
	size += parametersMUS.Size(v.Applied)
	size += namesMUS.Size(v.Missing)
	return size + timeMUS.Size(v.Timestamp)
}

func (s generationMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
