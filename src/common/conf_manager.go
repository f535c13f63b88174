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
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	ini "github.com/glacjay/goini"
)

var GlobalConf ConfManager

func initConf(path string) {
	GlobalConf = NewConfINIManager(path)
}

type ConfManager interface {
	GetString(section string, key string, defaultValue string) string
	GetBool(section string, key string, defaultValue bool) bool
	GetDouble(section string, key string, defaultValue float64) float64
	GetInt(section string, key string, defaultValue int) int

	SetString(section string, key string, value string)
	SetBool(section string, key string, value bool)
	SetDouble(section string, key string, value float64)
	SetInt(section string, key string, value int)

	Del(section string, key string)
	GetSectionManager(section string) SectionConfManager
}

type SectionConfManager interface {
	GetString(key string, defaultValue string) string
	GetBool(key string, defaultValue bool) bool
	GetDouble(key string, defaultValue float64) float64
	GetInt(key string, defaultValue int) int

	SetString(key string, value string)
	SetBool(key string, value bool)
	SetDouble(key string, value float64)
	SetInt(key string, value int)

	Del(key string)
}

type ConfFileManager struct {
	path string
	dict map[string]map[string]string
	lock sync.RWMutex
}

type SectionConfFileManager struct {
	section string
	cs      *ConfFileManager
}

// NewConfINIManager loads path if it exists; every Set* writes the whole
// file back, so the ini on disk always matches memory.
func NewConfINIManager(path string) ConfManager {
	cs := &ConfFileManager{
		path: path,
		dict: make(map[string]map[string]string),
	}

	loaded, err := ini.Load(path)
	if err == nil {
		for section, kv := range loaded {
			for key, value := range kv {
				cs.put(section, key, value)
			}
		}
	}
	return cs
}

func (cs *ConfFileManager) GetString(section, key, defaultValue string) string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.get(section, key); ok {
		return v
	}
	return defaultValue
}

func (cs *ConfFileManager) GetBool(section, key string, defaultValue bool) bool {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.get(section, key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func (cs *ConfFileManager) GetDouble(section, key string, defaultValue float64) float64 {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.get(section, key); ok {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			return d
		}
	}
	return defaultValue
}

func (cs *ConfFileManager) GetInt(section, key string, defaultValue int) int {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.get(section, key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func (cs *ConfFileManager) SetString(section, key, value string) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.put(section, key, value)
	cs.store()
}

func (cs *ConfFileManager) SetBool(section, key string, value bool) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.put(section, key, strconv.FormatBool(value))
	cs.store()
}

func (cs *ConfFileManager) SetDouble(section, key string, value float64) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.put(section, key, strconv.FormatFloat(value, 'f', -1, 64))
	cs.store()
}

func (cs *ConfFileManager) SetInt(section, key string, value int) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.put(section, key, strconv.Itoa(value))
	cs.store()
}

func (cs *ConfFileManager) Del(section, key string) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	kv, ok := cs.dict[normalize(section)]
	if !ok {
		return
	}
	delete(kv, normalize(key))
	cs.store()
}

func (cs *ConfFileManager) GetSectionManager(section string) SectionConfManager {
	return &SectionConfFileManager{section: section, cs: cs}
}

func (cs *ConfFileManager) get(section, key string) (string, bool) {
	kv, ok := cs.dict[normalize(section)]
	if !ok {
		return "", false
	}
	v, ok := kv[normalize(key)]
	return v, ok
}

func (cs *ConfFileManager) put(section, key, value string) {
	s := normalize(section)
	kv, ok := cs.dict[s]
	if !ok {
		kv = make(map[string]string)
		cs.dict[s] = kv
	}
	kv[normalize(key)] = value
}

// store rewrites the backing ini. Sections and keys come out sorted so the
// file is stable between runs.
func (cs *ConfFileManager) store() {
	f, err := os.OpenFile(cs.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return
	}
	defer f.Close()

	sections := make([]string, 0, len(cs.dict))
	for section := range cs.dict {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	for _, section := range sections {
		fmt.Fprintf(f, "[%s]\n", section)

		kv := cs.dict[section]
		keys := make([]string, 0, len(kv))
		for key := range kv {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Fprintf(f, "%s = %s\n", key, kv[key])
		}
		fmt.Fprintln(f)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (sm *SectionConfFileManager) GetString(key, defaultValue string) string {
	return sm.cs.GetString(sm.section, key, defaultValue)
}

func (sm *SectionConfFileManager) GetBool(key string, defaultValue bool) bool {
	return sm.cs.GetBool(sm.section, key, defaultValue)
}

func (sm *SectionConfFileManager) GetDouble(key string, defaultValue float64) float64 {
	return sm.cs.GetDouble(sm.section, key, defaultValue)
}

func (sm *SectionConfFileManager) GetInt(key string, defaultValue int) int {
	return sm.cs.GetInt(sm.section, key, defaultValue)
}

func (sm *SectionConfFileManager) SetString(key, value string) {
	sm.cs.SetString(sm.section, key, value)
}

func (sm *SectionConfFileManager) SetBool(key string, value bool) {
	sm.cs.SetBool(sm.section, key, value)
}

func (sm *SectionConfFileManager) SetDouble(key string, value float64) {
	sm.cs.SetDouble(sm.section, key, value)
}

func (sm *SectionConfFileManager) SetInt(key string, value int) {
	sm.cs.SetInt(sm.section, key, value)
}

func (sm *SectionConfFileManager) Del(key string) {
	sm.cs.Del(sm.section, key)
}
