package domain

// CitySummary is one row of the City_Summary sheet.
type CitySummary struct {
	City            string  `json:"city" csv:"City"`
	TotalUsers      int     `json:"total_users" csv:"Total_Users"`
	AvgPurchaseProb float64 `json:"avg_purchase_prob" csv:"Avg_Purchase_Prob"`
	PurchasesYes    int     `json:"purchases_yes" csv:"Purchases_Yes"`
}

// CitySummaryHeaders returns the column headers of the City_Summary sheet.
func CitySummaryHeaders() []string {
	return []string{"City", "Total_Users", "Avg_Purchase_Prob", "Purchases_Yes"}
}

// Values returns the summary as a row of typed values in header order.
func (s CitySummary) Values() []interface{} {
	return []interface{}{s.City, s.TotalUsers, s.AvgPurchaseProb, s.PurchasesYes}
}
