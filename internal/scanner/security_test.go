// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/component-manager/pkg/types"
)

func TestScanSource(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType string
		wantSev  types.Severity
		wantLine int
	}{
		{
			name:     "eval call",
			content:  "const out = eval(userInput);",
			wantType: "code_injection",
			wantSev:  types.SeverityHigh,
			wantLine: 1,
		},
		{
			name:     "innerHTML assignment",
			content:  "const el = get();\nel.innerHTML = value;",
			wantType: "xss",
			wantSev:  types.SeverityMedium,
			wantLine: 2,
		},
		{
			name:     "environment variable read",
			content:  "const url = process.env.DATABASE_URL;",
			wantType: "information_disclosure",
			wantSev:  types.SeverityLow,
			wantLine: 1,
		},
		{
			name:     "hardcoded credential",
			content:  "const apiKey = 'sk-12345';",
			wantType: "hardcoded_secrets",
			wantSev:  types.SeverityCritical,
			wantLine: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vulns := ScanSource(tt.content)
			require.Len(t, vulns, 1)
			assert.Equal(t, tt.wantType, vulns[0].Type)
			assert.Equal(t, tt.wantSev, vulns[0].Severity)
			assert.Equal(t, tt.wantLine, vulns[0].Line)
		})
	}
}

func TestScanSourceSafeMarkers(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"masked credential", "const apiKey = '***';"},
		{"innerHTML via textContent on same line", "el.innerHTML = other.textContent;"},
		{"allowed env var", "const env = process.env.NODE_ENV;"},
		{"allowed api key var", "const k = process.env.ANTHROPIC_API_KEY ? 1 : 0;"},
		{"clean source", "export function add(a: number, b: number) { return a + b; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ScanSource(tt.content))
		})
	}
}

func TestScanSourceCompoundFindings(t *testing.T) {
	// A line can trip several checks; each is reported separately.
	vulns := ScanSource("const secret = eval(load());")
	require.Len(t, vulns, 2)
	assert.Equal(t, "code_injection", vulns[0].Type)
	assert.Equal(t, "hardcoded_secrets", vulns[1].Type)
}

func TestSecurityStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		vulns []types.Vulnerability
		want  types.SecurityStatus
	}{
		{"no findings", nil, types.SecurityApproved},
		{"only low", []types.Vulnerability{{Severity: types.SeverityLow}}, types.SecurityApproved},
		{"only medium", []types.Vulnerability{{Severity: types.SeverityMedium}}, types.SecurityApproved},
		{"high present", []types.Vulnerability{{Severity: types.SeverityLow}, {Severity: types.SeverityHigh}}, types.SecurityNeedsReview},
		{"critical present", []types.Vulnerability{{Severity: types.SeverityCritical}}, types.SecurityNeedsReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, securityStatusFor(tt.vulns))
		})
	}
}
