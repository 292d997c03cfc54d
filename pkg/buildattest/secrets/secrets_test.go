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
package secrets

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containersec/buildattest/pkg/buildattest/testutil"
)

// A structurally valid user credential; it parses without hitting the
// network but cannot mint real tokens.
const testKeyTemplate = `{
  "type": "authorized_user",
  "project_id": "%s",
  "client_id": "test-client",
  "client_secret": "test-secret",
  "refresh_token": "test-refresh"
}`

func writeStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	dir, err := ioutil.TempDir("", "buildattest-secrets")
	if err != nil {
		t.Fatalf("tempdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	for name, contents := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return NewStore(dir)
}

func TestFetch(t *testing.T) {
	store := writeStore(t, map[string]string{
		"builder-sa.json": fmt.Sprintf(testKeyTemplate, "my-project"),
		"garbage.json":    "not json at all",
	})
	tests := []struct {
		name          string
		credentialsID string
		shouldErr     bool
		errText       string
		errPrefix     string
	}{
		{
			name:          "resolves",
			credentialsID: "builder-sa",
		},
		{
			name:          "missing id",
			credentialsID: "",
			shouldErr:     true,
		},
		{
			name:          "store miss",
			credentialsID: "absent",
			shouldErr:     true,
			errText:       `failed to retrieve credentials "absent"`,
		},
		{
			name:          "unparseable key",
			credentialsID: "garbage",
			shouldErr:     true,
			errPrefix:     `failed to parse credentials "garbage"`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cred, err := store.Fetch(context.Background(), test.credentialsID)
			testutil.CheckError(t, test.shouldErr, err)
			if test.shouldErr {
				if test.errText != "" && err.Error() != test.errText {
					t.Errorf("got error %q, expected %q", err.Error(), test.errText)
				}
				if test.errPrefix != "" && !strings.HasPrefix(err.Error(), test.errPrefix) {
					t.Errorf("got error %q, expected prefix %q", err.Error(), test.errPrefix)
				}
				return
			}
			if cred.ID != test.credentialsID {
				t.Errorf("got ID %q, expected %q", cred.ID, test.credentialsID)
			}
			if cred.TokenSource == nil {
				t.Error("expected a token source")
			}
			if len(cred.JSON) == 0 {
				t.Error("expected raw key material to be retained")
			}
		})
	}
}

func TestFetchWrapsReadErrors(t *testing.T) {
	store := writeStore(t, map[string]string{
		"garbage.json": "not json at all",
	})
	_, err := store.Fetch(context.Background(), "garbage")
	if err == nil || err.Error() == `failed to retrieve credentials "garbage"` {
		t.Errorf("parse failure must not be reported as a store miss, got %v", err)
	}
}

func TestList(t *testing.T) {
	store := writeStore(t, map[string]string{
		"a.json":     "{}",
		"b.json":     "{}",
		"readme.txt": "ignored",
	})
	if err := os.Mkdir(filepath.Join(store.Dir, "sub.json"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ids, err := store.List()
	testutil.CheckErrorAndDeepEqual(t, false, err, []string{"a", "b"}, ids)
}

func TestListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(os.TempDir(), "buildattest-no-such-store"))
	if _, err := store.List(); err == nil {
		t.Error("expected error for missing store directory")
	}
}

func TestLookup(t *testing.T) {
	store := writeStore(t, map[string]string{
		"builder-sa.json": fmt.Sprintf(testKeyTemplate, "my-project"),
	})
	if err := store.Lookup("builder-sa"); err != nil {
		t.Errorf("lookup of present credential: %v", err)
	}
	if err := store.Lookup("absent"); err == nil {
		t.Error("expected lookup failure for absent credential")
	}
}
