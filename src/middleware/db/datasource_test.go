// Copyright 2021 The RegenProtocol Authors
// This file is part of the RegenProtocol library.
//
// The RegenProtocol library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The RegenProtocol library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the RegenProtocol library. If not, see <http://www.gnu.org/licenses/>.

package db

import (
	"bytes"
	"testing"
)

func TestMemDatabasePutGetDelete(t *testing.T) {
	mem, _ := NewMemDatabase()

	if err := mem.Put([]byte("mb1"), []byte("regenerator")); err != nil {
		t.Fatalf("put error: %s", err.Error())
	}

	value, err := mem.Get([]byte("mb1"))
	if err != nil || !bytes.Equal(value, []byte("regenerator")) {
		t.Fatalf("get returned %v, %v", value, err)
	}

	exist, _ := mem.Has([]byte("mb1"))
	if !exist {
		t.Fatalf("key should exist")
	}

	if err = mem.Delete([]byte("mb1")); err != nil {
		t.Fatalf("delete error: %s", err.Error())
	}
	if exist, _ = mem.Has([]byte("mb1")); exist {
		t.Fatalf("key should be gone")
	}
}

func TestMemDatabaseBatch(t *testing.T) {
	mem, _ := NewMemDatabase()
	mem.Put([]byte("old"), []byte{1})

	batch := mem.NewBatch()
	batch.Put([]byte("a"), []byte{2})
	batch.Put([]byte("b"), []byte{3})
	batch.Delete([]byte("old"))

	// nothing lands before Write
	if exist, _ := mem.Has([]byte("a")); exist {
		t.Fatalf("batch leaked before write")
	}

	if err := batch.Write(); err != nil {
		t.Fatalf("batch write error: %s", err.Error())
	}
	if exist, _ := mem.Has([]byte("old")); exist {
		t.Fatalf("batched delete did not land")
	}
	if 2 != mem.Len() {
		t.Fatalf("unexpected key count %d", mem.Len())
	}
}

func TestLRUMemDatabase(t *testing.T) {
	mem, _ := NewLRUMemDatabase(10)
	for i := (byte)(0); i < 11; i++ {
		mem.Put([]byte{i}, []byte{i})
	}
	data, _ := mem.Get([]byte{0})
	if data != nil {
		t.Errorf("expected value nil")
	}
	data, _ = mem.Get([]byte{10})
	if data == nil {
		t.Errorf("expected value not nil")
	}
	data, _ = mem.Get([]byte{5})
	if data == nil {
		t.Errorf("expected value not nil")
	}
	mem.Delete([]byte{5})
	data, _ = mem.Get([]byte{5})
	if data != nil {
		t.Errorf("expected value nil")
	}
}

func TestGenerateKey(t *testing.T) {
	key := generateKey([]byte("mb1"), "st")
	if !bytes.Equal([]byte("stmb1"), key) {
		t.Fatalf("composite key %s", key)
	}
}
