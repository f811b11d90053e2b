package ramses

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/evohub/ramses/internal/frame"
)

//go:embed tables.yaml
var tablesYAML []byte

// IndexKind classifies what a code's leading context byte addresses.
type IndexKind string

const (
	IdxNone         IndexKind = "none"
	IdxZone         IndexKind = "zone"
	IdxZoneOrDomain IndexKind = "zone_or_domain"
	IdxDHW          IndexKind = "dhw"
	IdxUFH          IndexKind = "ufh"
	IdxHVAC         IndexKind = "hvac"
	IdxOther        IndexKind = "other"
)

// CodeInfo is the compiled table entry for one message code.
type CodeInfo struct {
	Name       string
	Idx        IndexKind
	ArrayWidth int // sub-record width in hex chars, 0 if never an array
	RQPayload  bool

	patterns map[frame.Verb]*regexp.Regexp
}

// Pattern returns the payload pattern for a verb, or nil if the verb is
// not defined for this code.
func (c *CodeInfo) Pattern(v frame.Verb) *regexp.Regexp { return c.patterns[v] }

// Verbs lists the verbs defined for this code.
func (c *CodeInfo) Verbs() []frame.Verb {
	out := make([]frame.Verb, 0, len(c.patterns))
	for v := range c.patterns {
		out = append(out, v)
	}
	return out
}

type codeEntry struct {
	Name      string            `yaml:"name"`
	Idx       string            `yaml:"idx"`
	Array     int               `yaml:"array"`
	RQPayload bool              `yaml:"rq_payload"`
	Verbs     map[string]string `yaml:"verbs"`
}

type exceptionEntry struct {
	Dst  string `yaml:"dst"`
	Verb string `yaml:"verb"`
	Code string `yaml:"code"`
}

type tablesFile struct {
	Codes      map[string]codeEntry            `yaml:"codes"`
	Devices    map[string]map[string][]string  `yaml:"devices"`
	Exceptions []exceptionEntry                `yaml:"exceptions"`
}

type exceptionKey struct {
	dst  string
	verb frame.Verb
	code frame.Code
}

var (
	codeTable   map[frame.Code]*CodeInfo
	deviceTable map[string]map[frame.Code]map[frame.Verb]bool
	exceptions  map[exceptionKey]bool
)

func init() {
	if err := loadTables(tablesYAML); err != nil {
		panic(fmt.Sprintf("ramses: bad embedded tables: %v", err))
	}
}

func loadTables(raw []byte) error {
	var f tablesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}

	codeTable = make(map[frame.Code]*CodeInfo, len(f.Codes))
	for code, entry := range f.Codes {
		info := &CodeInfo{
			Name:       entry.Name,
			Idx:        IndexKind(entry.Idx),
			ArrayWidth: entry.Array,
			RQPayload:  entry.RQPayload,
			patterns:   make(map[frame.Verb]*regexp.Regexp, len(entry.Verbs)),
		}
		for verb, pattern := range entry.Verbs {
			v, err := frame.ParseVerb(verb)
			if err != nil {
				return fmt.Errorf("code %s: %w", code, err)
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("code %s verb %s: %w", code, verb, err)
			}
			info.patterns[v] = re
		}
		codeTable[frame.Code(code)] = info
	}

	deviceTable = make(map[string]map[frame.Code]map[frame.Verb]bool, len(f.Devices))
	for devType, codes := range f.Devices {
		byCode := make(map[frame.Code]map[frame.Verb]bool, len(codes))
		for code, verbs := range codes {
			if _, ok := codeTable[frame.Code(code)]; !ok {
				return fmt.Errorf("device %s lists unknown code %s", devType, code)
			}
			set := make(map[frame.Verb]bool, len(verbs))
			for _, verb := range verbs {
				v, err := frame.ParseVerb(verb)
				if err != nil {
					return fmt.Errorf("device %s code %s: %w", devType, code, err)
				}
				set[v] = true
			}
			byCode[frame.Code(code)] = set
		}
		deviceTable[devType] = byCode
	}

	exceptions = make(map[exceptionKey]bool, len(f.Exceptions))
	for _, e := range f.Exceptions {
		v, err := frame.ParseVerb(e.Verb)
		if err != nil {
			return fmt.Errorf("exception %+v: %w", e, err)
		}
		exceptions[exceptionKey{dst: e.Dst, verb: v, code: frame.Code(e.Code)}] = true
	}
	return nil
}

// Lookup returns the table entry for a code.
func Lookup(code frame.Code) (*CodeInfo, bool) {
	info, ok := codeTable[code]
	return info, ok
}

// KnownCode reports whether the code appears in the tables at all.
func KnownCode(code frame.Code) bool {
	_, ok := codeTable[code]
	return ok
}

// CanSend reports whether a device type is known to emit this (code, verb).
// The gateway type "18" is not in the tables: it relays anything, so it
// only needs the code to be known.
func CanSend(devType string, code frame.Code, verb frame.Verb) bool {
	if devType == "18" {
		return KnownCode(code)
	}
	codes, ok := deviceTable[devType]
	if !ok {
		return false
	}
	return codes[code][verb]
}

// KnownDevice reports whether the device type appears in the tables.
func KnownDevice(devType string) bool {
	_, ok := deviceTable[devType]
	return ok
}

// CanReceive reports whether a device type is a plausible target for this
// (code, verb): the destination must be able to answer with the inverse
// verb. The gateway type "18" accepts anything with a known code.
func CanReceive(devType string, code frame.Code, verb frame.Verb) bool {
	if devType == "18" {
		return KnownCode(code)
	}
	codes, ok := deviceTable[devType]
	if !ok {
		return false
	}
	return codes[code][verb.Responder()]
}

// IsException reports whether this (dst-type, verb, code) combination is
// exempt from the destination check. An exception with no dst type applies
// to every destination.
func IsException(dstType string, verb frame.Verb, code frame.Code) bool {
	return exceptions[exceptionKey{dst: dstType, verb: verb, code: code}] ||
		exceptions[exceptionKey{verb: verb, code: code}]
}
