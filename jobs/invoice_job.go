package jobs

import (
	"log"

	"github.com/wanjiru2468/fitness_trainer/services"
)

// RunMonthlyInvoicing fires once a day; the service only bills clients whose
// configured invoice day is today.
func RunMonthlyInvoicing() {
	log.Println("Running job: RunMonthlyInvoicing...")
	services.ProcessMonthlyInvoices()
}
