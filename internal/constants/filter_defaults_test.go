package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterDefaults(t *testing.T) {
	t.Run("Constants have expected values", func(t *testing.T) {
		assert.Equal(t, 4.0, DefaultThreshold)
		assert.Equal(t, 4, DefaultPrefixLen)
		assert.Equal(t, 15, DefaultMaxClusterSize)
		assert.Equal(t, 3, DefaultMinSchoolSize)
		assert.Equal(t, 3, DefaultMinSubgroupSize)
		assert.Equal(t, 0.3, DefaultQTMSubgroup)
		assert.Equal(t, 1.5, DefaultQTMCase1)
		assert.Equal(t, 0.2, DefaultQTMFinal)
		assert.Equal(t, 3.5, DefaultOutlierThreshold)
	})

	t.Run("Auto settings default to zero", func(t *testing.T) {
		assert.Zero(t, DefaultMinClusterSize)
		assert.Zero(t, DefaultSubgroupThreshold)
	})

	t.Run("Score weights leave room for the remaining terms", func(t *testing.T) {
		used := DefaultLengthWeight + DefaultRankWeight + DefaultSizeWeight
		assert.Less(t, used, 100.0, "fixed weights should leave points for distance, silhouette and representativeness")
	})

	t.Run("End weights stay within 100 points", func(t *testing.T) {
		assert.LessOrEqual(t, DefaultEndFaceWeight+DefaultEndSequenceWeight, 100.0)
	})

	t.Run("Label names are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, name := range LabelNames {
			assert.False(t, seen[name], "duplicate label %q", name)
			seen[name] = true
		}
	})
}
