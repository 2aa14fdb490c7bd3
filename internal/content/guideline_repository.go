package content

import (
	"sort"
	"strconv"
	"strings"

	"github.com/VitaliyFgiol/Bot/internal/sheets"
)

// Guideline rows are stored as (topic, sequence, text). Sequence orders the
// text blocks of one topic; rows with an unparsable sequence are skipped.
const guidelineRange = "Guidelines!A:C"

type GuidelineRepository struct {
	store         sheets.Store
	spreadsheetID string
}

func NewGuidelineRepository(store sheets.Store, spreadsheetID string) *GuidelineRepository {
	return &GuidelineRepository{store: store, spreadsheetID: spreadsheetID}
}

// GetByTopic returns the guideline text blocks for topic in sequence order.
// The topic match is exact (after trimming the stored cell). An empty slice
// means no material exists for the topic.
func (r *GuidelineRepository) GetByTopic(topic string) ([]string, error) {
	rows, err := r.store.ReadRange(r.spreadsheetID, guidelineRange)
	if err != nil {
		return nil, err
	}

	type block struct {
		seq  int
		text string
	}
	var blocks []block
	for _, row := range rows {
		if len(row) < 3 || strings.TrimSpace(row[0]) != topic {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		blocks = append(blocks, block{seq: seq, text: row[2]})
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].seq < blocks[j].seq })

	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.text)
	}
	return texts, nil
}
