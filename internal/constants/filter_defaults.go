package constants

// Clustering defaults. A zero value for an auto setting means the value is
// derived from the batch size at run time.
const (
	// DefaultThreshold is the school distance under which a sequence joins
	// an existing school. School distance ranges over [0, 10].
	DefaultThreshold = 4.0

	// DefaultPrefixLen is the number of opening moves compared when
	// deduplicating labeled candidates within a school.
	DefaultPrefixLen = 4

	// DefaultMinClusterSize selects the batch size dependent merge floor.
	DefaultMinClusterSize = 0

	// DefaultMaxClusterSize caps the members a school accepts during
	// sequential assignment.
	DefaultMaxClusterSize = 15

	// DefaultMinSchoolSize drops schools smaller than this after merging.
	DefaultMinSchoolSize = 3

	// DefaultSubgroupThreshold selects the batch size dependent opening
	// distance threshold.
	DefaultSubgroupThreshold = 0.0

	// DefaultMinSubgroupSize is the smallest subgroup that receives a label.
	DefaultMinSubgroupSize = 3
)

// Scoring weights, in points out of 100.
const (
	DefaultLengthWeight = 40.0
	DefaultRankWeight   = 25.0
	DefaultSizeWeight   = 15.0

	// DefaultEndFaceWeight and DefaultEndSequenceWeight blend the ending
	// similarity used for school distance.
	DefaultEndFaceWeight     = 40.0
	DefaultEndSequenceWeight = 40.0
)

// Quarter turn penalties per quarter turn.
const (
	DefaultQTMSubgroup = 0.3
	DefaultQTMCase1    = 1.5
	DefaultQTMFinal    = 0.2
)

// DefaultOutlierThreshold is the modified z-score above which the outlier
// diagnostic reports a school member.
const DefaultOutlierThreshold = 3.5

// LabelNames lists the display labels from most to least prominent.
var LabelNames = []string{
	"Representative",
	"Shortest Alternative",
	"Alternative",
	"Member",
	"Unlabeled",
}
