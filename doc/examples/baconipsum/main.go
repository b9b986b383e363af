// Command baconipsum calls the Bacon Ipsum API with typed endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/broady/patman"
)

// MeatAndFillerArgs are the arguments of the lorem generator.
type MeatAndFillerArgs struct {
	Type           string `schema:"type"`
	Paras          int    `schema:"paras,omitempty"`
	Sentences      int    `schema:"sentences,omitempty"`
	StartWithLorem bool   `schema:"-"`
	Format         string `schema:"format,omitempty"`
}

var baconService = patman.Service{BaseURL: "https://baconipsum.com/api"}

// [snippet:endpoints]
var meatAndFiller = patman.NewEndpoint[MeatAndFillerArgs, []string]("GET", "/").
	WithParamsFunc(func(ctx context.Context, a MeatAndFillerArgs) (patman.Params, error) {
		params, err := patman.StructParams(a)
		if err != nil {
			return nil, err
		}
		if a.StartWithLorem {
			params = params.Add("start-with-lorem", 1)
		}
		return params, nil
	})

var staticEndpoint = patman.NewEndpoint[patman.NoArgs, []string]("GET", "/").
	WithParams(patman.Params{{Key: "type", Value: "meat-and-filler"}})

// [/snippet:endpoints]

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := patman.NewClient().WithLogger(logger)

	// [snippet:call]
	callMeatAndFiller := patman.Bind(client, baconService, meatAndFiller)
	res, err := callMeatAndFiller(ctx, MeatAndFillerArgs{Type: "all-meat", Paras: 1})
	result1, err := patman.Body(res, err, patman.OnValidationError([]string{}))
	if err != nil {
		log.Fatal(err)
	}

	callStatic := patman.Bind(client, baconService, staticEndpoint)
	res, err = callStatic(ctx, patman.NoArgs{})
	result2, err := patman.Body(res, err,
		patman.OnValidationError([]string{}),
		patman.OnNotFound([]string{}))
	if err != nil {
		log.Fatal(err)
	}
	// [/snippet:call]

	fmt.Println("result1:", result1)
	fmt.Println("result2:", result2)

	// [snippet:combine]
	baconIpsum, err := patman.Combine(client,
		patman.Services{"prod": baconService},
		map[string]patman.Definition{"meatAndFiller": meatAndFiller, "staticEndpoint": staticEndpoint})
	if err != nil {
		log.Fatal(err)
	}
	inv, err := baconIpsum.Lookup("prod", "meatAndFiller")
	if err != nil {
		log.Fatal(err)
	}
	prod, _ := patman.As[MeatAndFillerArgs, []string](inv)
	combined, err := prod(ctx, MeatAndFillerArgs{Type: "all-meat"})
	if err != nil {
		log.Fatal(err)
	}
	// [/snippet:combine]
	fmt.Println("baconIpsum.prod.meatAndFiller", combined.Body)
}
