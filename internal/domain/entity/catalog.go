package entity

import "fmt"

// ClassCatalog соответствие id класса модели и читаемой метки
type ClassCatalog map[int]string

// DefaultClassCatalog набор меток, если модель не отдаёт свои.
func DefaultClassCatalog() ClassCatalog {
	return ClassCatalog{
		0: "acne",
		1: "blackhead",
		2: "dark_spot",
		3: "redness",
		4: "normal",
		5: "whitehead",
		6: "pimple",
		7: "skin_blemish",
		8: "acne_scar",
		9: "skin_lesion",
	}
}

// Label возвращает метку класса; для неизвестного id class_{id}.
func (c ClassCatalog) Label(classID int) string {
	if label, ok := c[classID]; ok && label != "" {
		return label
	}
	return fmt.Sprintf("class_%d", classID)
}

// Len количество известных классов
func (c ClassCatalog) Len() int {
	return len(c)
}
