// Package geodex provides a Go client for the geodex natural-language
// dataset search API.
//
//	client, _ := geodex.New("http://localhost:8080",
//	    geodex.WithAPIKey("secret"),
//	)
//	res, err := client.Search(ctx, "traffic data in Munich", 5)
//	if err != nil {
//	    // *geodex.APIError carries the HTTP status and wire error code
//	}
//	fmt.Println(res.Answer)
//	for _, ds := range res.SourceDatasets {
//	    fmt.Println(ds.DatasetID, ds.RelevanceScore)
//	}
package geodex
