package contract

import "github.com/Hedi-Slm/epic-events/internal/models"

// StatusView is one entry of the contract filter menu.
type StatusView struct {
	Label  string
	Status models.ContractStatus
}

// StatusViews lists the contract filters offered to every role.
var StatusViews = []StatusView{
	{Label: "Unsigned contracts", Status: models.ContractsUnsigned},
	{Label: "Partially paid contracts", Status: models.ContractsUnpaid},
	{Label: "Signed contracts", Status: models.ContractsSigned},
	{Label: "Fully paid contracts", Status: models.ContractsPaid},
}
