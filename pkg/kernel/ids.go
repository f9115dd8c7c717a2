package kernel

type AnalysisID string

func NewAnalysisID(id string) AnalysisID { return AnalysisID(id) }
func (a AnalysisID) String() string      { return string(a) }
func (a AnalysisID) IsEmpty() bool       { return string(a) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (j JobID) String() string { return string(j) }
func (j JobID) IsEmpty() bool  { return string(j) == "" }

type ScanID string

func NewScanID(id string) ScanID { return ScanID(id) }
func (s ScanID) String() string  { return string(s) }
func (s ScanID) IsEmpty() bool   { return string(s) == "" }
