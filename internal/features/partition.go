package features

import (
	"sort"

	"github.com/fortuna/hardwood/internal/store"
)

// PartitionBySeason splits game indices into the first frac of each
// season and the remainder. The input is assumed chronological, so the
// first slice is the early-season portion used to seed ratings and the
// second is the evaluation portion.
func PartitionBySeason(games []store.GameRecord, frac float64) (first, second []int) {
	bySeason := make(map[int][]int)
	for i := range games {
		bySeason[games[i].Season] = append(bySeason[games[i].Season], i)
	}

	years := make([]int, 0, len(bySeason))
	for year := range bySeason {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		idcs := bySeason[year]
		thresh := int(float64(len(idcs)) * frac)
		first = append(first, idcs[:thresh]...)
		second = append(second, idcs[thresh:]...)
	}
	return first, second
}

// SplitByYears separates compiled feature rows into train and test
// sets by season. PCA fitting on the split belongs to the downstream
// modeling stage.
func SplitByYears(rows []FeatureRow, trainYears, testYears []int) (train, test []FeatureRow) {
	inTrain := make(map[int]bool, len(trainYears))
	for _, y := range trainYears {
		inTrain[y] = true
	}
	inTest := make(map[int]bool, len(testYears))
	for _, y := range testYears {
		inTest[y] = true
	}

	for i := range rows {
		switch {
		case inTrain[rows[i].Season]:
			train = append(train, rows[i])
		case inTest[rows[i].Season]:
			test = append(test, rows[i])
		}
	}
	return train, test
}
