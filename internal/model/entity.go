package model

import "encoding/json"

// EntityKind discriminates the entity payload variants.
type EntityKind string

const (
	EntityImageFile EntityKind = "imageFile"
	EntityUser      EntityKind = "user"
	EntityProcess   EntityKind = "process"
	EntityUnknown   EntityKind = "unknown"
)

// Entity is the tagged detail payload of a node. Exactly one of the
// variant pointers matching Kind is set; the others are nil.
type Entity struct {
	Kind      EntityKind
	ImageFile *ImageFile
	User      *User
	Process   *Process
}

// ImageFile describes a file/image entity.
type ImageFile struct {
	FilePath     string `json:"filePath,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	MD5          string `json:"md5,omitempty"`
	SHA1         string `json:"sha1,omitempty"`
	SHA256       string `json:"sha256,omitempty"`
	CreationTime string `json:"creationTime,omitempty"`
}

// User describes an account entity.
type User struct {
	DomainName string `json:"domainName,omitempty"`
	UserName   string `json:"userName,omitempty"`
	Sid        string `json:"sid,omitempty"`
}

// Process describes a process entity.
type Process struct {
	ProcessID         int64  `json:"processId,omitempty"`
	CommandLine       string `json:"commandLine,omitempty"`
	ParentProcessID   int64  `json:"parentProcessId,omitempty"`
	ParentProcessName string `json:"parentProcessName,omitempty"`
	CreationTime      string `json:"creationTime,omitempty"`
	IntegrityLevel    string `json:"integrityLevel,omitempty"`
	TokenElevation    string `json:"tokenElevation,omitempty"`
}

// HasData reports whether the entity carries any meaningful payload.
// Unknown entities never do.
func (e *Entity) HasData() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case EntityImageFile:
		return e.ImageFile.hasData()
	case EntityUser:
		return e.User.hasData()
	case EntityProcess:
		return e.Process.hasData()
	}
	return false
}

func (f *ImageFile) hasData() bool {
	if f == nil {
		return false
	}
	return f.FilePath != "" || f.FileName != "" || f.FileSize != 0 ||
		f.MD5 != "" || f.SHA1 != "" || f.SHA256 != "" || f.CreationTime != ""
}

func (u *User) hasData() bool {
	if u == nil {
		return false
	}
	return u.DomainName != "" || u.UserName != "" || u.Sid != ""
}

func (p *Process) hasData() bool {
	if p == nil {
		return false
	}
	return p.ProcessID != 0 || p.CommandLine != "" || p.ParentProcessID != 0 ||
		p.ParentProcessName != "" || p.CreationTime != "" ||
		p.IntegrityLevel != "" || p.TokenElevation != ""
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := &Entity{Kind: e.Kind}
	if e.ImageFile != nil {
		f := *e.ImageFile
		out.ImageFile = &f
	}
	if e.User != nil {
		u := *e.User
		out.User = &u
	}
	if e.Process != nil {
		p := *e.Process
		out.Process = &p
	}
	return out
}

// entityWire is the flat JSON shape: the variant fields plus a
// discriminator, matching the export format.
type entityWire struct {
	EntityType string `json:"entityType"`

	FilePath     string `json:"filePath,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	MD5          string `json:"md5,omitempty"`
	SHA1         string `json:"sha1,omitempty"`
	SHA256       string `json:"sha256,omitempty"`
	CreationTime string `json:"creationTime,omitempty"`

	DomainName string `json:"domainName,omitempty"`
	UserName   string `json:"userName,omitempty"`
	Sid        string `json:"sid,omitempty"`

	ProcessID         int64  `json:"processId,omitempty"`
	CommandLine       string `json:"commandLine,omitempty"`
	ParentProcessID   int64  `json:"parentProcessId,omitempty"`
	ParentProcessName string `json:"parentProcessName,omitempty"`
	IntegrityLevel    string `json:"integrityLevel,omitempty"`
	TokenElevation    string `json:"tokenElevation,omitempty"`
}

// MarshalJSON flattens the tagged union into the export's wire shape.
func (e *Entity) MarshalJSON() ([]byte, error) {
	w := entityWire{EntityType: string(e.Kind)}
	switch e.Kind {
	case EntityImageFile:
		if f := e.ImageFile; f != nil {
			w.FilePath = f.FilePath
			w.FileName = f.FileName
			w.FileSize = f.FileSize
			w.MD5 = f.MD5
			w.SHA1 = f.SHA1
			w.SHA256 = f.SHA256
			w.CreationTime = f.CreationTime
		}
	case EntityUser:
		if u := e.User; u != nil {
			w.DomainName = u.DomainName
			w.UserName = u.UserName
			w.Sid = u.Sid
		}
	case EntityProcess:
		if p := e.Process; p != nil {
			w.ProcessID = p.ProcessID
			w.CommandLine = p.CommandLine
			w.ParentProcessID = p.ParentProcessID
			w.ParentProcessName = p.ParentProcessName
			w.CreationTime = p.CreationTime
			w.IntegrityLevel = p.IntegrityLevel
			w.TokenElevation = p.TokenElevation
		}
	}
	return json.Marshal(w)
}

// entityWireIn mirrors entityWire but types the numeric fields loosely;
// exports carry pids and sizes as numbers or strings depending on the
// tool version they were copied from.
type entityWireIn struct {
	EntityType string `json:"entityType"`

	FilePath     string      `json:"filePath"`
	FileName     string      `json:"fileName"`
	FileSize     interface{} `json:"fileSize"`
	MD5          string      `json:"md5"`
	SHA1         string      `json:"sha1"`
	SHA256       string      `json:"sha256"`
	CreationTime string      `json:"creationTime"`

	DomainName string `json:"domainName"`
	UserName   string `json:"userName"`
	Sid        string `json:"sid"`

	ProcessID         interface{} `json:"processId"`
	CommandLine       string      `json:"commandLine"`
	ParentProcessID   interface{} `json:"parentProcessId"`
	ParentProcessName string      `json:"parentProcessName"`
	IntegrityLevel    string      `json:"integrityLevel"`
	TokenElevation    string      `json:"tokenElevation"`
}

// UnmarshalJSON reads the wire shape, using the entityType discriminator
// when present and falling back to probing which variant carries data.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var w entityWireIn
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	file := &ImageFile{
		FilePath: w.FilePath, FileName: w.FileName, FileSize: ToInt64(w.FileSize),
		MD5: w.MD5, SHA1: w.SHA1, SHA256: w.SHA256, CreationTime: w.CreationTime,
	}
	user := &User{DomainName: w.DomainName, UserName: w.UserName, Sid: w.Sid}
	proc := &Process{
		ProcessID: ToInt64(w.ProcessID), CommandLine: w.CommandLine,
		ParentProcessID: ToInt64(w.ParentProcessID), ParentProcessName: w.ParentProcessName,
		CreationTime: w.CreationTime, IntegrityLevel: w.IntegrityLevel,
		TokenElevation: w.TokenElevation,
	}

	switch EntityKind(w.EntityType) {
	case EntityImageFile:
		*e = Entity{Kind: EntityImageFile, ImageFile: file}
	case EntityUser:
		*e = Entity{Kind: EntityUser, User: user}
	case EntityProcess:
		*e = Entity{Kind: EntityProcess, Process: proc}
	default:
		switch {
		case proc.ProcessID != 0 || proc.CommandLine != "":
			*e = Entity{Kind: EntityProcess, Process: proc}
		case user.UserName != "" || user.Sid != "":
			*e = Entity{Kind: EntityUser, User: user}
		case file.hasData():
			*e = Entity{Kind: EntityImageFile, ImageFile: file}
		default:
			*e = Entity{Kind: EntityUnknown}
		}
	}
	return nil
}
