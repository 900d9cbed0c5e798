// Package presenter готовит упорядоченные и отфильтрованные списки чеков для отображения.
package presenter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/mmeshcher/receiptly/internal/model"
)

// RecentLimit задаёт количество последних чеков на дашборде.
const RecentLimit = 5

// SortByDateDesc возвращает новый срез, отсортированный от новых к старым.
// Сортировка стабильная, чеки с неразборчивой датой идут в конце.
func SortByDateDesc(receipts []model.Receipt) []model.Receipt {
	sorted := slices.Clone(receipts)
	if sorted == nil {
		sorted = []model.Receipt{}
	}

	slices.SortStableFunc(sorted, func(a, b model.Receipt) int {
		da, okA := a.ParsedDate()
		db, okB := b.ParsedDate()
		switch {
		case okA && okB:
			return db.Compare(da)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})

	return sorted
}

// FilterAndSort сортирует чеки по дате и оставляет подходящие под запрос.
// Пустой запрос возвращает весь список. Пробелы по краям запроса отбрасываются
// и при сравнении, поэтому " co" находит "Costco".
func FilterAndSort(receipts []model.Receipt, query string) []model.Receipt {
	sorted := SortByDateDesc(receipts)

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return sorted
	}

	res := make([]model.Receipt, 0, len(sorted))
	for _, r := range sorted {
		if Matches(r, query) {
			res = append(res, r)
		}
	}

	return res
}

// Matches проверяет чек на совпадение с запросом в нижнем регистре:
// по продавцу, по строковому виду суммы или по дате.
func Matches(r model.Receipt, query string) bool {
	if strings.Contains(strings.ToLower(r.Vendor), query) {
		return true
	}
	if r.Total != nil && strings.Contains(strconv.FormatFloat(*r.Total, 'f', -1, 64), query) {
		return true
	}
	return strings.Contains(r.Date, query)
}

// Recent возвращает первые n чеков по убыванию даты без фильтрации.
func Recent(receipts []model.Receipt, n int) []model.Receipt {
	sorted := SortByDateDesc(receipts)
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RecentReceipts возвращает последние чеки для дашборда.
func RecentReceipts(receipts []model.Receipt) []model.Receipt {
	return Recent(receipts, RecentLimit)
}
