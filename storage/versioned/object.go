////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"encoding/json"
	"fmt"
	"time"
)

// Object is the unit of storage in the versioned KV. It keeps track of the
// schema version and time of storage alongside the serialized payload.
type Object struct {
	// Version of the schema the Data was written with.
	Version uint64

	// Timestamp of when this object was written.
	Timestamp time.Time

	// Data is the serialized original object.
	Data []byte
}

// Unmarshal deserializes an Object from a byte slice. It is used to make
// these storable in a KeyValue.
func (v *Object) Unmarshal(data []byte) error {
	return json.Unmarshal(data, v)
}

// Marshal serializes an Object into a byte slice. Object exports all fields
// and they have simple types, so json.Marshal works fine.
func (v *Object) Marshal() []byte {
	d, err := json.Marshal(v)
	if err != nil {
		// Not being able to marshal this simple object means something
		// is really wrong
		panic(fmt.Sprintf("Could not marshal: %+v", v))
	}
	return d
}
