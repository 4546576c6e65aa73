// Package gate decides whether a fetched skill package may be installed.
//
// Evaluation is deterministic for a given (metadata, options) pair and does no
// I/O: it only consumes metadata the registry client already fetched and the
// archive bytes already downloaded.
package gate

import (
	"fmt"
	"strings"

	"clawhub/internal/archive"
	"clawhub/internal/registry"
	"clawhub/internal/skillerr"
)

// Options are the caller's override flags.
type Options struct {
	// SkipGates bypasses every check, structural ones included.
	SkipGates bool
	// SkipSecurity bypasses scan-status checks only.
	SkipSecurity bool
}

// Scan statuses reported by the registry.
const (
	StatusClean      = "clean"
	StatusBenign     = "benign"
	StatusHarmless   = "harmless"
	StatusUndetected = "undetected"
	StatusSuspicious = "suspicious"
	StatusMalicious  = "malicious"
)

// Verdict is the outcome of an allowed evaluation. Denials are errors.
type Verdict struct {
	// Warnings should be shown to the operator but do not block the install.
	Warnings []string
	// Skipped is set when the checks were bypassed by an override.
	Skipped bool
}

// Evaluate applies the scan-status policy to meta.
func Evaluate(meta *registry.SkillMeta, opts Options) (Verdict, error) {
	if opts.SkipGates || opts.SkipSecurity {
		return Verdict{Skipped: true}, nil
	}

	slug := ""
	var scan *registry.ScanStatus
	if meta != nil {
		slug = meta.Slug
		scan = meta.VirusTotal
	}

	if scan == nil || strings.TrimSpace(scan.Status) == "" {
		return Verdict{Warnings: []string{
			fmt.Sprintf("%s has not been scanned yet; review it before use", slug),
		}}, nil
	}

	switch strings.ToLower(strings.TrimSpace(scan.Status)) {
	case StatusMalicious:
		return Verdict{}, skillerr.Newf(skillerr.KindGateDenied, "security gate",
			"%s is flagged as malicious by the registry scan (%d reports)", slug, scan.ReportCount)
	case StatusSuspicious:
		return Verdict{Warnings: []string{
			fmt.Sprintf("%s is flagged as suspicious by the registry scan (%d reports)", slug, scan.ReportCount),
		}}, nil
	case StatusClean, StatusBenign, StatusHarmless, StatusUndetected:
		return Verdict{}, nil
	default:
		return Verdict{Warnings: []string{
			fmt.Sprintf("%s has unrecognised scan status %q", slug, scan.Status),
		}}, nil
	}
}

// CheckArchive validates the structure of a downloaded archive: it must be a
// readable zip with safe entry paths and a SKILL.md at its root or under a
// single top-level directory.
func CheckArchive(data []byte, opts Options) error {
	if opts.SkipGates {
		return nil
	}
	contents, err := archive.Inspect(data)
	if err != nil {
		return skillerr.Wrap(skillerr.KindGateDenied, "archive gate", err)
	}
	if !contents.HasSkillFile {
		return skillerr.Newf(skillerr.KindGateDenied, "archive gate",
			"archive does not contain %s", archive.SkillFile)
	}
	return nil
}
