package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/wanjiru2468/fitness_trainer/models"
	"gorm.io/gorm"
)

const invoiceNumberLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateUniqueInvoiceNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, invoiceNumberLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		number := fmt.Sprintf("INV-%s", string(b))

		var invoice models.Invoice
		err := tx.Where("number = ?", number).First(&invoice).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}
