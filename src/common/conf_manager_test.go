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

package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfFileManagerSetGet(t *testing.T) {
	path := filepath.Join(os.TempDir(), "rgn_conf_test.ini")
	defer os.Remove(path)

	cm := NewConfINIManager(path)

	cm.SetBool("teSt_1", "bool_1", true)
	cm.SetDouble("test_2", "double_1", 10.33)
	cm.SetString("TTT", "STR", "abc好的")
	cm.SetInt("instance", "index", 2)

	if !cm.GetBool("test_1", "bool_1", false) {
		t.Fatal("bool_1 should be true")
	}
	if cm.GetDouble("test_2", "double_1", 100) != 10.33 {
		t.Fatal("double_1 mismatch")
	}
	if cm.GetString("ttt", "str", "") != "abc好的" {
		t.Fatal("str mismatch")
	}
	if cm.GetInt("instance", "index", 0) != 2 {
		t.Fatal("index mismatch")
	}
	if cm.GetString("test_2", "missing", "fallback") != "fallback" {
		t.Fatal("default not returned")
	}

	// values survive a reload from disk
	cm2 := NewConfINIManager(path)
	if cm2.GetInt("instance", "index", 0) != 2 {
		t.Fatal("index lost after reload")
	}
	if !cm2.GetBool("test_1", "bool_1", false) {
		t.Fatal("bool_1 lost after reload")
	}
}

func TestSectionConfManager(t *testing.T) {
	path := filepath.Join(os.TempDir(), "rgn_conf_section_test.ini")
	defer os.Remove(path)

	cm := NewConfINIManager(path)
	sm := cm.GetSectionManager("test_2")

	sm.SetDouble("d1", 2932)
	sm.SetString("abc", "DBU")
	if sm.GetDouble("d1", 0) != 2932 {
		t.Fatal("d1 mismatch")
	}
	if sm.GetString("abc", "") != "DBU" {
		t.Fatal("abc mismatch")
	}

	sm.Del("abc")
	if sm.GetString("abc", "gone") != "gone" {
		t.Fatal("abc should be deleted")
	}
}
