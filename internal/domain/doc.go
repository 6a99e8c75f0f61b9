// Package domain models the young-population dataset and the values derived
// from it by the analysis engine.
//
// # Data Source
//
// The dataset is the OECD "Young population" indicator exported as CSV. Each
// row is one observation for one location and year:
//
//	LOCATION,INDICATOR,SUBJECT,MEASURE,FREQUENCY,TIME,Value,Flag Codes
//	AUS,YOUNGPOP,TOT,PC_POP,A,1958,30.1,
//
// Only three columns are part of the contract:
//
//	LOCATION  string key: ISO-3166 alpha-3 country code or an aggregate
//	          such as "OECD", "G-7", "EU28", "EA19".
//	TIME      integer year.
//	Value     float, share of the population aged 0-14 (percent).
//
// Every other column is carried through untouched in [Record.Raw] so that raw
// row display can show exactly what the file contained.
//
// # Rejected Rows
//
// A row whose LOCATION is empty, whose TIME is not an integer, or whose Value is
// not a finite float is rejected at load time and counted in
// [Dataset.Rejected]. A dataset never holds a partial record.
//
// # Ordering
//
// A [Series] keeps dataset order. Consumers that need chronological order
// (trend fitting, forecasting, charts) call [Series.Sorted], which is a stable
// sort so repeated years keep their file order.
package domain
