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

import "testing"

func TestSelectOption(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		value      string
		expected   string
	}{
		{
			name:       "matching value selected",
			candidates: []string{"other", "test"},
			value:      "test",
			expected:   "test",
		},
		{
			name:       "no match selects first non-empty",
			candidates: []string{"other", "test"},
			value:      "absent",
			expected:   "other",
		},
		{
			name:       "empty value selects first non-empty",
			candidates: []string{"other", "test"},
			value:      "",
			expected:   "other",
		},
		{
			name:       "no candidates selects nothing",
			candidates: []string{},
			value:      "test",
			expected:   "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			list := NewSelectableList()
			for _, c := range test.candidates {
				list = list.Add(c)
			}
			SelectOption(list, test.value)
			if got := list.SelectedValue(); got != test.expected {
				t.Errorf("selected %q, expected %q", got, test.expected)
			}
			selected := 0
			for _, o := range list {
				if o.Selected {
					selected++
				}
			}
			if selected > 1 {
				t.Errorf("%d options selected, at most one allowed", selected)
			}
		})
	}
}

func TestSelectOptionSkipsLeadingPlaceholder(t *testing.T) {
	list := NewSelectableList().Add("first").Add("second")
	SelectOption(list, "")
	if list[0].Selected {
		t.Error("leading empty placeholder must not be selected")
	}
	if got := list.SelectedValue(); got != "first" {
		t.Errorf("selected %q, expected %q", got, "first")
	}
}

func TestSelectOptionNilList(t *testing.T) {
	// Must not panic.
	SelectOption(nil, "anything")
}

func TestSentinel(t *testing.T) {
	list := Sentinel("cannot list yet")
	if len(list) != 1 || list[0].Value != "" || list[0].Label != "cannot list yet" {
		t.Errorf("unexpected sentinel list %+v", list)
	}
	if list.SelectedValue() != "" {
		t.Error("sentinel entry must not be selected")
	}
}
