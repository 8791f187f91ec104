// Package verify checks the integrity and authenticity of downloaded archives.
//
// Two methods are supported: a SHA256 digest published next to the archive,
// and an OpenPGP detached signature checked against a keyring the user
// supplies. Either may be used alone; when both are configured the installer
// runs both.
package verify

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

var (
	// ErrChecksumMismatch is returned when the computed digest differs from the published one.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrChecksumNotFound is returned when the checksum file has no entry for the archive.
	ErrChecksumNotFound = errors.New("checksum not found")
	// ErrEmptyKeyring is returned when a keyring contains no keys.
	ErrEmptyKeyring = errors.New("keyring is empty")
)

// Method indicates how an archive was verified
type Method int

const (
	// MethodNone means the archive was not verified
	MethodNone Method = iota
	// MethodSHA256 means a published SHA256 digest matched
	MethodSHA256
	// MethodGPG means an OpenPGP detached signature was valid
	MethodGPG
)

// String returns the string representation of the verification method
func (m Method) String() string {
	switch m {
	case MethodNone:
		return "None"
	case MethodSHA256:
		return "SHA256"
	case MethodGPG:
		return "GPG"
	default:
		return "Unknown"
	}
}

// Result contains the outcome of a verification
type Result struct {
	Method   Method
	Expected string
	Actual   string
	// Signer is the primary identity of the signing key (GPG only)
	Signer string
}

// SHA256File calculates the hex-encoded SHA256 digest of a file
func SHA256File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyChecksum compares the SHA256 digest of archivePath with the entry
// for it in checksumPath.
func VerifyChecksum(archivePath, checksumPath string) (*Result, error) {
	expected, err := FindChecksum(checksumPath, filepath.Base(archivePath))
	if err != nil {
		return nil, fmt.Errorf("find checksum: %w", err)
	}

	actual, err := SHA256File(archivePath)
	if err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	result := &Result{Method: MethodSHA256, Expected: expected, Actual: actual}
	if !strings.EqualFold(actual, expected) {
		return result, fmt.Errorf("%w:\nactual:   %s\nexpected: %s", ErrChecksumMismatch, actual, expected)
	}

	return result, nil
}

// FindChecksum finds the digest for filename in a checksum file.
//
// Accepted formats:
//
//	abc123...                      (bare digest, single-file checksum)
//	abc123...  filename.zip        (sha256sum text mode)
//	abc123... *filename.zip        (sha256sum binary mode)
//
// When the file holds exactly one entry it is used regardless of its name,
// since release mirrors often publish the digest under a stable alias.
func FindChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	var entries [][]string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		entries = append(entries, parts)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	for _, parts := range entries {
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}

	if len(entries) == 1 {
		return entries[0][0], nil
	}

	return "", fmt.Errorf("%w for %s", ErrChecksumNotFound, filename)
}

// VerifySignature checks an OpenPGP detached signature over archivePath.
// Both the signature and the keyring may be armored or binary.
func VerifySignature(archivePath, signaturePath, keyringPath string) (*Result, error) {
	keyring, err := LoadKeyring(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("load keyring: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	sig, err := os.Open(signaturePath)
	if err != nil {
		return nil, fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	signer, err := openpgp.CheckArmoredDetachedSignature(keyring, archive, sig, nil)
	if err != nil {
		if _, seekErr := archive.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("rewind archive: %w", seekErr)
		}
		if _, seekErr := sig.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("rewind signature: %w", seekErr)
		}
		signer, err = openpgp.CheckDetachedSignature(keyring, archive, sig, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("verify signature: %w", err)
	}

	result := &Result{Method: MethodGPG}
	if signer != nil {
		for name := range signer.Identities {
			result.Signer = name
			break
		}
	}
	return result, nil
}

// LoadKeyring reads an armored or binary OpenPGP keyring.
func LoadKeyring(path string) (openpgp.EntityList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer file.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(file)
	if err != nil {
		if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", seekErr)
		}
		keyring, err = openpgp.ReadKeyRing(file)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, ErrEmptyKeyring
	}
	return keyring, nil
}
