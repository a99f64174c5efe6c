package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash computation is used for staleness detection - determining whether a
// telecommand's definition or documentation has changed since the last scan.
//
// Hash format: "sig_hash:doc_hash" (8 hex chars each)
//   - Signature hash: sha256(name + function + arg count + readiness)[:8]
//   - Doc hash: sha256(doc comment + argument descriptions)[:8]

// HashLength is the number of hex characters in a truncated hash.
// Hashes are truncated to 8 hex chars (32 bits) for compact storage.
const HashLength = 8

// ComputeSigHash computes a hash over the fields that define a telecommand's
// identity in the dispatch table. A changed sig hash means the table entry
// itself was edited.
func ComputeSigHash(t *Telecommand) string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteByte('|')
	sb.WriteString(t.FunctionSymbol)
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(t.ArgumentCount))
	sb.WriteByte('|')
	sb.WriteString(t.ReadinessLevel)
	return truncateHash(hashBytes([]byte(sb.String())))
}

// ComputeDocHash computes a hash over a telecommand's documentation.
// Returns "00000000" for telecommands with no doc comment at all.
func ComputeDocHash(t *Telecommand) string {
	if t.FullDoc == nil && t.ArgumentDescriptions == nil {
		return emptyHash()
	}

	var sb strings.Builder
	if t.FullDoc != nil {
		sb.WriteString(*t.FullDoc)
	}
	for _, d := range t.ArgumentDescriptions {
		sb.WriteString("\n- ")
		sb.WriteString(d)
	}
	return truncateHash(hashBytes([]byte(sb.String())))
}

// ComputeRecordHash computes the canonical "sig:doc" hash pair for a record.
func ComputeRecordHash(t *Telecommand) string {
	return FormatHashPair(ComputeSigHash(t), ComputeDocHash(t))
}

// ComputeCorpusHash computes a hash of raw source content for change
// detection. This is used at the file level to skip unchanged files during
// scanning, and as the parse cache key.
func ComputeCorpusHash(content []byte) string {
	return truncateHash(hashBytes(content))
}

// CompareHashes checks if two hash pairs (sig:doc format) differ.
// Returns: sigChanged, docChanged
//
// This is useful for determining what kind of change occurred:
//   - sigChanged=true: the table entry was modified
//   - docChanged=true: only documentation was modified
func CompareHashes(old, new string) (sigChanged, docChanged bool) {
	oldSig, oldDoc := ParseHashPair(old)
	newSig, newDoc := ParseHashPair(new)

	// Invalid format (missing colon) is considered changed
	if oldSig == "" && oldDoc == "" {
		return true, true
	}
	if newSig == "" && newDoc == "" {
		return true, true
	}

	sigChanged = oldSig != newSig
	docChanged = oldDoc != newDoc

	return sigChanged, docChanged
}

// FormatHashPair formats signature and doc hashes as "sig:doc".
// This is the canonical storage format for record hashes.
func FormatHashPair(sigHash, docHash string) string {
	return sigHash + ":" + docHash
}

// ParseHashPair parses a "sig:doc" format hash pair.
// Returns an empty string for docHash if the format is invalid.
func ParseHashPair(hashPair string) (sigHash, docHash string) {
	idx := strings.Index(hashPair, ":")
	if idx == -1 {
		// Invalid format - return the whole string as sigHash
		return hashPair, ""
	}
	return hashPair[:idx], hashPair[idx+1:]
}

// hashBytes computes SHA-256 hash of bytes and returns hex string.
func hashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// truncateHash truncates a hash string to HashLength characters.
func truncateHash(hash string) string {
	if len(hash) <= HashLength {
		return hash
	}
	return hash[:HashLength]
}

// emptyHash returns the hash value used for records without documentation.
func emptyHash() string {
	return "00000000"
}

// IsEmptyHash checks if a hash represents missing documentation.
func IsEmptyHash(hash string) bool {
	return hash == "00000000"
}
