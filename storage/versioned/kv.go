////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package versioned wraps an ekv.KeyValue with per-object version numbers
// and namespacing prefixes. It is the durable client storage sink used for
// session-local state: the acting identity, language, display preferences,
// and the recent emoji history.
package versioned

import (
	"fmt"

	"gitlab.com/elixxir/ekv"
)

const PrefixSeparator = "/"

type root struct {
	data ekv.KeyValue
}

// KV stores versioned data under a namespace prefix.
type KV struct {
	r      *root
	prefix string
}

// NewKV creates a versioned key/value store backed by anything implementing
// ekv.KeyValue.
func NewKV(data ekv.KeyValue) *KV {
	newKV := KV{}
	root := root{data: data}
	newKV.r = &root
	return &newKV
}

// Get returns the data stored at the key for the given version.
func (v *KV) Get(key string, version uint64) (*Object, error) {
	key = v.makeKey(key, version)
	result := Object{}
	err := v.r.data.Get(key, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Set upserts new data into the storage. The object carries its own version;
// writing a new version does not remove the old one.
func (v *KV) Set(key string, object *Object) error {
	key = v.makeKey(key, object.Version)
	return v.r.data.Set(key, object)
}

// Delete removes the given key from the data store.
func (v *KV) Delete(key string, version uint64) error {
	return v.r.data.Delete(v.makeKey(key, version))
}

// Prefix returns a new KV with the prefix appended to the namespace.
func (v *KV) Prefix(prefix string) *KV {
	return &KV{
		r:      v.r,
		prefix: v.prefix + prefix + PrefixSeparator,
	}
}

// GetPrefix returns the prefix of the KV.
func (v *KV) GetPrefix() string {
	return v.prefix
}

// IsMemStore returns true if the underlying store is in-memory only.
func (v *KV) IsMemStore() bool {
	_, success := v.r.data.(*ekv.Memstore)
	return success
}

// Exists returns false if the error indicates the element doesn't exist.
func (v *KV) Exists(err error) bool {
	return ekv.Exists(err)
}

func (v *KV) makeKey(key string, version uint64) string {
	return fmt.Sprintf("%s%s_%d", v.prefix, key, version)
}
