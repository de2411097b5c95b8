package paper

type Mode string

const (
	ModeManual Mode = "MANUAL"
	ModeAuto   Mode = "AUTO"
)

type Category string

const (
	CategoryDiagnostic Category = "DIAGNOSTIC"
	CategoryPractice   Category = "PRACTICE"
	CategoryMock       Category = "MOCK"
	CategoryReview     Category = "REVIEW"
)

var AllCategories = []Category{
	CategoryDiagnostic,
	CategoryPractice,
	CategoryMock,
	CategoryReview,
}

// IsPersonal reports whether exams of the category are composed for one
// candidate and stay private to their creator.
func (c Category) IsPersonal() bool {
	return c == CategoryPractice || c == CategoryReview || c == CategoryMock
}

func (c Category) IsValid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

var AllExamStatuses = []ExamStatus{
	ExamStatusDraft,
	ExamStatusPublished,
	ExamStatusArchived,
}

func (s ExamStatus) IsValid() bool {
	for _, v := range AllExamStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PracticeMode selects how practice difficulty is targeted.
type PracticeMode string

const (
	PracticeAdaptive PracticeMode = "ADAPTIVE"
	PracticeFixed    PracticeMode = "FIXED"
)

func (m PracticeMode) IsValid() bool {
	return m == PracticeAdaptive || m == PracticeFixed
}
