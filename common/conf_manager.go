package common

import (
	"os"
	"strings"
	"sync"

	"github.com/glacjay/goini"
)

/*
**  Creator: pxf
**  Date: 2018/4/10 下午2:13
**  Description:
 */

type ConfManager interface {
	// GetString returns the value of key under section, or defaultValue if it is not configured
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

// SectionConfManager is a ConfManager bound to a single section.
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
	dict ini.Dict
	lock sync.RWMutex
}

type ConfSectionManager struct {
	section string
	cm      ConfManager
}

var GlobalConf ConfManager

func InitConf(path string) {
	if GlobalConf == nil {
		GlobalConf = NewConfINIManager(path)
	}
}

func NewConfINIManager(path string) ConfManager {
	cs := &ConfFileManager{
		path: path,
	}

	_, err := os.Stat(path)

	if err != nil && os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			panic(err)
		}
		f.Close()
	} else if err != nil {
		panic(err)
	}
	cs.dict = ini.MustLoad(path)

	return cs
}

func (cs *ConfFileManager) GetSectionManager(section string) SectionConfManager {
	return &ConfSectionManager{
		section: section,
		cm:      cs,
	}
}

func (cs *ConfFileManager) GetString(section string, key string, defaultValue string) string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.dict.GetString(strings.ToLower(section), strings.ToLower(key)); ok {
		return v
	}
	return defaultValue
}

func (cs *ConfFileManager) GetBool(section string, key string, defaultValue bool) bool {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.dict.GetBool(strings.ToLower(section), strings.ToLower(key)); ok {
		return v
	}
	return defaultValue
}

func (cs *ConfFileManager) GetDouble(section string, key string, defaultValue float64) float64 {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.dict.GetDouble(strings.ToLower(section), strings.ToLower(key)); ok {
		return v
	}
	return defaultValue
}

func (cs *ConfFileManager) GetInt(section string, key string, defaultValue int) int {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if v, ok := cs.dict.GetInt(strings.ToLower(section), strings.ToLower(key)); ok {
		return v
	}
	return defaultValue
}

func (cs *ConfFileManager) SetString(section string, key string, value string) {
	cs.update(func() {
		cs.dict.SetString(strings.ToLower(section), strings.ToLower(key), value)
	})
}

func (cs *ConfFileManager) SetBool(section string, key string, value bool) {
	cs.update(func() {
		cs.dict.SetBool(strings.ToLower(section), strings.ToLower(key), value)
	})
}

func (cs *ConfFileManager) SetDouble(section string, key string, value float64) {
	cs.update(func() {
		cs.dict.SetDouble(strings.ToLower(section), strings.ToLower(key), value)
	})
}

func (cs *ConfFileManager) SetInt(section string, key string, value int) {
	cs.update(func() {
		cs.dict.SetInt(strings.ToLower(section), strings.ToLower(key), value)
	})
}

func (cs *ConfFileManager) Del(section string, key string) {
	cs.update(func() {
		cs.dict.Delete(strings.ToLower(section), strings.ToLower(key))
	})
}

func (cs *ConfFileManager) update(updator func()) {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	updator()
	cs.store()
}

func (cs *ConfFileManager) store() {
	if err := ini.Write(cs.path, &cs.dict); err != nil && DefaultLogger != nil {
		DefaultLogger.Errorf("write conf %v fail: %v", cs.path, err)
	}
}

func (csm *ConfSectionManager) GetString(key string, defaultValue string) string {
	return csm.cm.GetString(csm.section, key, defaultValue)
}

func (csm *ConfSectionManager) GetBool(key string, defaultValue bool) bool {
	return csm.cm.GetBool(csm.section, key, defaultValue)
}

func (csm *ConfSectionManager) GetDouble(key string, defaultValue float64) float64 {
	return csm.cm.GetDouble(csm.section, key, defaultValue)
}

func (csm *ConfSectionManager) GetInt(key string, defaultValue int) int {
	return csm.cm.GetInt(csm.section, key, defaultValue)
}

func (csm *ConfSectionManager) SetString(key string, value string) {
	csm.cm.SetString(csm.section, key, value)
}

func (csm *ConfSectionManager) SetBool(key string, value bool) {
	csm.cm.SetBool(csm.section, key, value)
}

func (csm *ConfSectionManager) SetDouble(key string, value float64) {
	csm.cm.SetDouble(csm.section, key, value)
}

func (csm *ConfSectionManager) SetInt(key string, value int) {
	csm.cm.SetInt(csm.section, key, value)
}

func (csm *ConfSectionManager) Del(key string) {
	csm.cm.Del(csm.section, key)
}
