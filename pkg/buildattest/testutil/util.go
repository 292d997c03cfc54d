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

package testutil

import (
	"fmt"
	"reflect"
	"testing"

	"gopkg.in/d4l3k/messagediff.v1"
)

// CheckErrorAndDeepEqual asserts error expectations and if a return is as expected.
func CheckErrorAndDeepEqual(t *testing.T, shouldErr bool, err error, expected, actual interface{}) {
	t.Helper()
	if cerr := checkErr(shouldErr, err); cerr != nil {
		t.Error(cerr)
		return
	}
	DeepEqual(t, expected, actual)
}

// DeepEqual asserts equality between two objects and outputs a diff.
func DeepEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		diff, _ := messagediff.PrettyDiff(expected, actual)
		t.Errorf("%T differ. %s", expected, diff)
	}
}

// CheckError asserts error expectations.
func CheckError(t *testing.T, shouldErr bool, err error) {
	t.Helper()
	if cerr := checkErr(shouldErr, err); cerr != nil {
		t.Error(cerr)
	}
}

func checkErr(shouldErr bool, err error) error {
	if err == nil && shouldErr {
		return fmt.Errorf("Expected error, but returned none")
	}
	if err != nil && !shouldErr {
		return fmt.Errorf("Unexpected error: %s", err)
	}
	return nil
}
