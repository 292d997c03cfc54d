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

package descriptor

import "fmt"

// Kind is the outcome class of a configuration-time check.
type Kind int

const (
	KindOK Kind = iota
	KindWarning
	KindError
)

func (k Kind) String() string {
	return [...]string{"ok", "warning", "error"}[k]
}

// Result is the outcome of validating a single configuration field,
// rendered to the user by the UI/CLI boundary.
type Result struct {
	Kind    Kind
	Message string
}

func OK() Result {
	return Result{Kind: KindOK}
}

func Warning(message string) Result {
	return Result{Kind: KindWarning, Message: message}
}

func Warningf(format string, args ...interface{}) Result {
	return Warning(fmt.Sprintf(format, args...))
}

func Error(message string) Result {
	return Result{Kind: KindError, Message: message}
}

func Errorf(format string, args ...interface{}) Result {
	return Error(fmt.Sprintf(format, args...))
}

// IsError reports whether the result should block the configuration.
func (r Result) IsError() bool {
	return r.Kind == KindError
}

// ValidateRequiredFields verifies that every field is non-empty before
// running the rest of a check. Fields are walked in order and the first
// empty one produces Error(messages[i]) without evaluating terminal or any
// later field, so the caller controls which single message the user sees.
// fields and messages must have the same length; a mismatch is a
// programming error and panics.
func ValidateRequiredFields(fields, messages []string, terminal func() Result) Result {
	if len(fields) != len(messages) {
		panic(fmt.Sprintf("descriptor: %d fields but %d messages", len(fields), len(messages)))
	}
	for i, f := range fields {
		if f == "" {
			return Error(messages[i])
		}
	}
	return terminal()
}
