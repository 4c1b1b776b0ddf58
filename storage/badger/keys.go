package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/morphit/core"
)

// Key prefixes for different data types
const (
	characterRecordPrefix = "chrrec"
	characterNamePrefix   = "chrname"
	generationPrefix      = "genrec"
	generationDatePrefix  = "genrecd"
	generationIDSeq       = "genrecseq"
)

// makeCharacterKey generates a key for a character record by ID.
func makeCharacterKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", characterRecordPrefix, id))
}

// makeCharacterNameKey generates a key for the name index.
// Format: prefix:name
func makeCharacterNameKey(name string) []byte {
	return []byte(characterNamePrefix + ":" + name)
}

// makeGenerationKey generates a key for a generation record by ID.
func makeGenerationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", generationPrefix, id))
}

// makeGenerationDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeGenerationDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := []byte(generationDatePrefix + ":")
	buf := make([]byte, len(prefix)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialGenerationDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialGenerationDateKey(timestamp time.Time) []byte {
	prefix := []byte(generationDatePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
