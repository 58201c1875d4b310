////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package emoji

import "testing"

// Tests that ValidateReaction accepts single emojis and rejects everything
// else.
func TestValidateReaction(t *testing.T) {
	tests := []struct {
		reaction string
		valid    bool
	}{
		{"👍", true},
		{"❤️", true},
		{"🎉", true},
		{"A", false},
		{"👍👍", false},
		{"👍 ", false},
		{"nice 👍", false},
		{"", false},
	}

	for i, tt := range tests {
		err := ValidateReaction(tt.reaction)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateReaction(%q) (%d) returned %v, "+
				"expected valid=%t", tt.reaction, i, err, tt.valid)
		}
	}
}

// Tests that the supported emoji list is not empty.
func TestSupportedEmojis(t *testing.T) {
	if len(SupportedEmojis()) == 0 {
		t.Fatalf("SupportedEmojis returned an empty list")
	}
}
