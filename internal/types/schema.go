package types

// SchemaType distinguishes how a shift schema repeats
type SchemaType string

const (
	SchemaWeekly  SchemaType = "WEEKLY"
	SchemaMonthly SchemaType = "MONTHLY"
	SchemaCustom  SchemaType = "CUSTOM"
)

// BlockType classifies what a schema block is for
type BlockType string

const (
	BlockWork     BlockType = "WORK"
	BlockBreak    BlockType = "BREAK"
	BlockTraining BlockType = "TRAINING"
)

// SchemaBlock is a half-open minute-of-day interval [StartMinutes, EndMinutes)
// within one schema day. Overlapping blocks within a day yield first-match
// attribution: the block with the lowest slice index wins.
type SchemaBlock struct {
	StartMinutes int       `json:"startMinutesFromMidnight" dynamodbav:"StartMinutes"`
	EndMinutes   int       `json:"endMinutesFromMidnight" dynamodbav:"EndMinutes"`
	BlockType    BlockType `json:"blockType" dynamodbav:"BlockType"`
	Name         string    `json:"name,omitempty" dynamodbav:"Name"`
}

// SchemaDay owns the blocks for one zero-based day-of-cycle index
type SchemaDay struct {
	DayIndex int           `json:"dayIndex" dynamodbav:"DayIndex"`
	Blocks   []SchemaBlock `json:"blocks" dynamodbav:"Blocks"`
}

// Schema is a named, tenant-scoped shift template
type Schema struct {
	SchemaID  string      `json:"schemaId" dynamodbav:"SchemaID"`
	Name      string      `json:"name" dynamodbav:"Name"`
	Type      SchemaType  `json:"type" dynamodbav:"Type"`
	CompanyID string      `json:"companyId" dynamodbav:"CompanyID"`
	CreatorID string      `json:"creatorId" dynamodbav:"CreatorID"`
	Days      []SchemaDay `json:"days" dynamodbav:"Days"`
}

// DayIndexRange restricts a schema lookup to an inclusive day-of-cycle window
type DayIndexRange struct {
	From int `json:"fromDayIndex"`
	To   int `json:"toDayIndex"`
}
