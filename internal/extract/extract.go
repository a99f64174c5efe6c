package extract

// Parse runs the full extraction pipeline over a C source corpus: strip
// comments, parse the single telecommand definition array, then attach doc
// comments and argument descriptions from the original comment-bearing text.
//
// Structural failures in the array pass are fatal; missing documentation is
// not. Records are returned in declaration order.
func Parse(corpus string) ([]Telecommand, error) {
	records, err := ParseArray(StripComments(corpus))
	if err != nil {
		return nil, err
	}

	for i := range records {
		doc, ok := FindDoc(corpus, records[i].FunctionSymbol)
		if !ok {
			continue
		}
		records[i].FullDoc = &doc
		records[i].ArgumentDescriptions = ArgDescriptions(doc)
	}
	return records, nil
}
