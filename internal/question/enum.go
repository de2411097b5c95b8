package question

type Type string

const (
	TypeSingle Type = "SINGLE"
	TypeMulti  Type = "MULTI"
	TypeJudge  Type = "JUDGE"
	TypeFill   Type = "FILL"
	TypeShort  Type = "SHORT"
)

var AllTypes = []Type{
	TypeSingle,
	TypeMulti,
	TypeJudge,
	TypeFill,
	TypeShort,
}

// ObjectiveTypes are the types composed papers draw from.
var ObjectiveTypes = []Type{TypeSingle, TypeMulti, TypeJudge}

func (t Type) IsValid() bool {
	for _, v := range AllTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsChoice reports whether answers are option keys compared case-insensitively.
func (t Type) IsChoice() bool {
	return t == TypeSingle || t == TypeMulti || t == TypeJudge
}
