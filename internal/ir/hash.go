package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPlan   = "docstore/plan/v1"
	DomainRecord = "docstore/record/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanFingerprint computes the identity of a compiled predicate.
// The same model and the same rendered source always produce the same
// fingerprint, which is what the plan cache and the catalog key on.
func PlanFingerprint(model, source string) (string, error) {
	obj := IRObject{
		"model":  IRString(model),
		"source": IRString(source),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("PlanFingerprint: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainPlan, canonical), nil
}

// RecordHash computes a content hash for a record. Reference indexes use
// it to bucket records by value.
func RecordHash(v IRValue) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// MustPlanFingerprint is like PlanFingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPlanFingerprint(model, source string) string {
	fp, err := PlanFingerprint(model, source)
	if err != nil {
		panic(err)
	}
	return fp
}
