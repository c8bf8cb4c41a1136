package constants

// DefaultScrapeURL is the personal-loan listing the lender catalog was built for.
const DefaultScrapeURL = "https://www.bankbazaar.com/personal-loan.html"

// Lenders is the default catalog, in match priority order.
var Lenders = []string{
	"HDFC Bank Personal Loan",
	"IndusInd Bank Personal Loan",
	"TurboLoan powered by Chola",
	"MyShubhLife",
	"Tata Capital Personal Loan",
	"HOME CREDIT",
	"Kotak Mahindra Bank Personal Loan",
	"Ujjivan Small Finance Bank",
	"InCred Personal Loan",
	"Edelweiss Salaried Personal Loan",
	"Standard Chartered Bank",
	"Yes Bank Personal Loan",
	"HDBFS Personal Loan",
	"Aditya Birla Capital Personal Loan",
	"India Infoline Finance Ltd",
	"IDFC First Bank Personal Loan",
}
