// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/meshintel/component-manager/pkg/types"
)

// securityCheck is one line-oriented vulnerability heuristic. The
// pattern flags a line; a non-empty safeMarker on the same line clears
// it.
type securityCheck struct {
	pattern     *regexp.Regexp
	safeMarker  *regexp.Regexp
	vulnType    string
	severity    types.Severity
	description string
}

var securityChecks = []securityCheck{
	{
		pattern:     regexp.MustCompile(`eval\s*\(`),
		vulnType:    "code_injection",
		severity:    types.SeverityHigh,
		description: "Use of eval() can lead to code injection vulnerabilities",
	},
	{
		pattern:     regexp.MustCompile(`innerHTML\s*=`),
		safeMarker:  regexp.MustCompile(`\.textContent`),
		vulnType:    "xss",
		severity:    types.SeverityMedium,
		description: "Direct innerHTML assignment may lead to XSS vulnerabilities",
	},
	{
		pattern:     regexp.MustCompile(`process\.env\.\w+`),
		safeMarker:  regexp.MustCompile(`ANTHROPIC_API_KEY|NODE_ENV`),
		vulnType:    "information_disclosure",
		severity:    types.SeverityLow,
		description: "Environment variable usage should be reviewed for sensitive data",
	},
	{
		pattern:     regexp.MustCompile(`(?i)apikey|password|secret|token`),
		safeMarker:  regexp.MustCompile(`\*\*\*`),
		vulnType:    "hardcoded_secrets",
		severity:    types.SeverityCritical,
		description: "Potential hardcoded secret or credential",
	},
}

// ScanSource runs the vulnerability heuristics over source text and
// returns the findings with 1-based line numbers.
func ScanSource(content string) []types.Vulnerability {
	var vulns []types.Vulnerability
	for i, line := range strings.Split(content, "\n") {
		for _, check := range securityChecks {
			if !check.pattern.MatchString(line) {
				continue
			}
			if check.safeMarker != nil && check.safeMarker.MatchString(line) {
				continue
			}
			vulns = append(vulns, types.Vulnerability{
				Type:        check.vulnType,
				Severity:    check.severity,
				Description: check.description,
				Line:        i + 1,
			})
		}
	}
	return vulns
}

// securityStatusFor derives the automated review outcome: any high or
// critical finding demands review, anything else is approved. Rejection
// is reserved for the manual path.
func securityStatusFor(vulns []types.Vulnerability) types.SecurityStatus {
	for _, v := range vulns {
		if v.Severity == types.SeverityHigh || v.Severity == types.SeverityCritical {
			return types.SecurityNeedsReview
		}
	}
	return types.SecurityApproved
}

// PerformSecurityScan re-reads one component's source, records the
// findings on the component, and returns the updated record.
func (s *Scanner) PerformSecurityScan(ctx context.Context, componentID string) (*types.ComponentRecord, error) {
	rec, err := s.store.ComponentByID(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("loading component %s: %w", componentID, err)
	}

	full := filepath.Join(s.cfg.ProjectRoot, filepath.FromSlash(rec.FilePath))
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rec.FilePath, err)
	}

	vulns := ScanSource(string(content))
	status := securityStatusFor(vulns)
	if err := s.store.UpdateComponentSecurity(ctx, rec.ID, status, vulns); err != nil {
		return nil, fmt.Errorf("recording security scan for %s: %w", rec.FilePath, err)
	}
	fmt.Fprintf(s.out, "security scan %s: %d findings, status %s\n", rec.Name, len(vulns), status)
	return s.store.ComponentByID(ctx, rec.ID)
}

// SecuritySweep scans every stored component and returns the number of
// components with at least one finding. Components whose source file no
// longer exists are logged and skipped.
func (s *Scanner) SecuritySweep(ctx context.Context) (flagged int, err error) {
	recs, err := s.store.ListComponents(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing components: %w", err)
	}
	for _, rec := range recs {
		updated, err := s.PerformSecurityScan(ctx, rec.ID)
		if err != nil {
			fmt.Fprintf(s.out, "skipping %s: %v\n", rec.FilePath, err)
			continue
		}
		if len(updated.Vulnerabilities) > 0 {
			flagged++
		}
	}
	return flagged, nil
}
