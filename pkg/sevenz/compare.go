package sevenz

import (
	"encoding/json"
	"os"

	"github.com/juju/errors"
)

// Diff расхождения между листингом и эталоном. Записи сопоставляются по имени
type Diff struct {
	// Есть в эталоне, нет в листинге
	Missing []Entry

	// Есть в листинге, нет в эталоне
	Extra []Entry
}

// Empty сообщает, что расхождений нет
func (d Diff) Empty() bool {
	return len(d.Missing) == 0 && len(d.Extra) == 0
}

// LoadGroundTruth читает эталонный JSON-массив записей, ранее сохранённый командой разбора листинга
func LoadGroundTruth(filePath string) ([]Entry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Annotate(err, filePath)
	}

	entries := make([]Entry, 0)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Annotatef(err, "разбор JSON '%s'", filePath)
	}

	return entries, nil
}

// Compare сравнивает записи entries с эталоном truth. Порядок записей в Missing соответствует
// порядку в truth, в Extra - порядку в entries
func Compare(entries []Entry, truth []Entry) Diff {
	inEntries := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		inEntries[e.Name] = struct{}{}
	}

	inTruth := make(map[string]struct{}, len(truth))
	for _, e := range truth {
		inTruth[e.Name] = struct{}{}
	}

	diff := Diff{
		Missing: make([]Entry, 0),
		Extra:   make([]Entry, 0),
	}

	for _, e := range truth {
		if _, ok := inEntries[e.Name]; !ok {
			diff.Missing = append(diff.Missing, e)
		}
	}
	for _, e := range entries {
		if _, ok := inTruth[e.Name]; !ok {
			diff.Extra = append(diff.Extra, e)
		}
	}

	return diff
}
