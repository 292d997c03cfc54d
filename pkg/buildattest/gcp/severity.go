/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package gcp

// Severity orders the vulnerability severity levels reported by the
// container analysis service.
type Severity int

const (
	SeverityUnspecified Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
	// SeverityIgnore is not a real service severity. It sorts above all
	// real severities so a threshold of Ignore matches nothing.
	SeverityIgnore
)

var severityNames = map[string]Severity{
	"UNSPECIFIED": SeverityUnspecified,
	"LOW":         SeverityLow,
	"MEDIUM":      SeverityMedium,
	"HIGH":        SeverityHigh,
	"CRITICAL":    SeverityCritical,
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityIgnore:
		return "IGNORE"
	default:
		return "UNSPECIFIED"
	}
}

// ParseSeverity maps a service severity name to a Severity. The service
// reports some vulnerabilities with an empty severity; those and unknown
// names map to SeverityUnspecified.
func ParseSeverity(name string) Severity {
	if s, ok := severityNames[name]; ok {
		return s
	}
	return SeverityUnspecified
}
