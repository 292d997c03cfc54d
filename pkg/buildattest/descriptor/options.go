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

// Option is a single entry of a selection dropdown.
type Option struct {
	Label    string
	Value    string
	Selected bool
}

// SelectableList is an ordered list of dropdown entries. After a selection
// pass at most one entry is selected.
type SelectableList []*Option

// NewSelectableList returns a list seeded with a single empty placeholder
// entry, matching how a fill operation starts before candidates are known.
func NewSelectableList() SelectableList {
	return SelectableList{{}}
}

// Sentinel returns a single-entry list whose label carries a status message
// and whose value is empty. It signals "cannot list yet" or "listing
// failed", which are distinct from an empty candidate set.
func Sentinel(message string) SelectableList {
	return SelectableList{{Label: message}}
}

// Add appends a candidate whose label and value are both the given string.
func (l SelectableList) Add(value string) SelectableList {
	return append(l, &Option{Label: value, Value: value})
}

// AddLabeled appends a candidate with separate label and value.
func (l SelectableList) AddLabeled(label, value string) SelectableList {
	return append(l, &Option{Label: label, Value: value})
}

// Values returns the option values in list order.
func (l SelectableList) Values() []string {
	vals := make([]string, len(l))
	for i, o := range l {
		vals[i] = o.Value
	}
	return vals
}

// SelectedValue returns the value of the selected option, or "".
func (l SelectableList) SelectedValue() string {
	for _, o := range l {
		if o.Selected {
			return o.Value
		}
	}
	return ""
}

// SelectOption selects value if it matches an option, otherwise the first
// option with a non-empty value (skipping the leading empty placeholder).
// Ties are broken by list order. With no non-empty candidates nothing is
// selected.
func SelectOption(list SelectableList, value string) {
	if list == nil {
		return
	}
	if value != "" {
		for _, o := range list {
			if o.Value == value {
				o.Selected = true
				return
			}
		}
	}
	for _, o := range list {
		if o.Value != "" {
			o.Selected = true
			return
		}
	}
}
