package dataset

import (
	"context"
	"fmt"
	"sort"

	"github.com/ahrav/rag-bench/internal/domain"
	"github.com/ahrav/rag-bench/internal/ports"
)

// DatasetBuilder materializes one registry dataset together with its
// raw source documents, keyed by file name.
type DatasetBuilder func() (domain.Dataset, map[string]string)

// Registry implements ports.DatasetCatalog over a static table of
// builders. New datasets register a builder; nothing else in the
// pipeline changes.
type Registry struct {
	builders map[string]DatasetBuilder
}

// NewRegistry returns a catalog preloaded with the built-in datasets.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]DatasetBuilder)}
	r.Register("covid19-origin", buildCovid19Origin)
	r.Register("paul-graham-essays", buildPaulGrahamEssays)
	r.Register("toy-3", buildToy3)
	return r
}

// Register adds or replaces a dataset builder.
func (r *Registry) Register(id string, builder DatasetBuilder) {
	r.builders[id] = builder
}

// Fetch materializes the dataset with the given identifier.
func (r *Registry) Fetch(_ context.Context, id string) (domain.Dataset, map[string]string, error) {
	builder, ok := r.builders[id]
	if !ok {
		return domain.Dataset{}, nil, fmt.Errorf("%w: %q", domain.ErrDatasetNotFound, id)
	}
	dataset, sources := builder()
	return dataset, sources, nil
}

// List returns the registered identifiers, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.builders))
	for id := range r.builders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var _ ports.DatasetCatalog = (*Registry)(nil)

// buildCovid19Origin is a labeled question set about the origins of
// SARS-CoV-2, paired with its source document.
func buildCovid19Origin() (domain.Dataset, map[string]string) {
	source := `SARS-CoV-2, the virus responsible for the COVID-19 pandemic, was first
identified in Wuhan, China in December 2019. Early cases clustered around the
Huanan Seafood Wholesale Market. Genomic analysis places the virus in the
Betacoronavirus genus, closely related to bat coronaviruses such as RaTG13,
which shares roughly 96 percent of its genome with SARS-CoV-2. Investigations
into the origin have focused on zoonotic spillover from an intermediate host,
with candidates including pangolins and raccoon dogs sold at live-animal
markets. The World Health Organization convened a joint study in early 2021
that assessed a laboratory incident as extremely unlikely, though the question
remained contested. The furin cleavage site in the spike protein, unusual among
sarbecoviruses, has been central to the debate about natural emergence.`

	seeds := []domain.ExampleSeed{
		{
			Query:             "Where was SARS-CoV-2 first identified?",
			ReferenceAnswer:   "SARS-CoV-2 was first identified in Wuhan, China in December 2019.",
			ReferenceContexts: []string{"SARS-CoV-2, the virus responsible for the COVID-19 pandemic, was first identified in Wuhan, China in December 2019."},
			HasReference:      true,
		},
		{
			Query:             "Which bat coronavirus is most closely related to SARS-CoV-2?",
			ReferenceAnswer:   "RaTG13, a bat coronavirus that shares roughly 96 percent of its genome with SARS-CoV-2.",
			ReferenceContexts: []string{"Genomic analysis places the virus in the Betacoronavirus genus, closely related to bat coronaviruses such as RaTG13, which shares roughly 96 percent of its genome with SARS-CoV-2."},
			HasReference:      true,
		},
		{
			Query:             "What animals were considered candidate intermediate hosts for SARS-CoV-2?",
			ReferenceAnswer:   "Pangolins and raccoon dogs sold at live-animal markets were considered candidate intermediate hosts.",
			ReferenceContexts: []string{"Investigations into the origin have focused on zoonotic spillover from an intermediate host, with candidates including pangolins and raccoon dogs sold at live-animal markets."},
			HasReference:      true,
		},
		{
			Query:             "What did the WHO joint study conclude about a laboratory incident?",
			ReferenceAnswer:   "The WHO joint study in early 2021 assessed a laboratory incident as extremely unlikely.",
			ReferenceContexts: []string{"The World Health Organization convened a joint study in early 2021 that assessed a laboratory incident as extremely unlikely, though the question remained contested."},
			HasReference:      true,
		},
		{
			Query:             "What feature of the spike protein has been central to the origin debate?",
			ReferenceAnswer:   "The furin cleavage site in the spike protein, which is unusual among sarbecoviruses.",
			ReferenceContexts: []string{"The furin cleavage site in the spike protein, unusual among sarbecoviruses, has been central to the debate about natural emergence."},
			HasReference:      true,
		},
	}

	return domain.Dataset{
		ID:          "covid19-origin",
		Name:        "Origin of COVID-19",
		Description: "Labeled questions about the emergence of SARS-CoV-2.",
		Labeled:     true,
		Seeds:       seeds,
	}, map[string]string{"origin_of_covid19.txt": source}
}

// buildPaulGrahamEssays is an unlabeled question set over a Paul Graham
// essay excerpt, for retrieval-only metric runs.
func buildPaulGrahamEssays() (domain.Dataset, map[string]string) {
	source := `Before college the two main things I worked on, outside of school, were
writing and programming. I didn't write essays. I wrote what beginning writers
were supposed to write then, and probably still are: short stories. The first
programs I tried writing were on the IBM 1401 that our school district used for
what was then called data processing. The language we used was an early version
of Fortran. You had to type programs on punch cards, then stack them in the
card reader and press a button to load the program into memory and run it.`

	seeds := []domain.ExampleSeed{
		{Query: "What did the author work on before college?"},
		{Query: "What kind of writing did the author do as a beginner?"},
		{Query: "What machine did the author first write programs on?"},
		{Query: "What language did the author use on the IBM 1401?"},
	}

	return domain.Dataset{
		ID:          "paul-graham-essays",
		Name:        "Paul Graham Essays",
		Description: "Unlabeled questions over a Paul Graham essay excerpt.",
		Labeled:     false,
		Seeds:       seeds,
	}, map[string]string{"paul_graham_essay.txt": source}
}

// buildToy3 is a three-example labeled fixture small enough to exercise
// batching boundaries end to end.
func buildToy3() (domain.Dataset, map[string]string) {
	source := `The capital of France is Paris. Water boils at 100 degrees Celsius at sea
level. The Go programming language was announced by Google in November 2009.`

	seeds := []domain.ExampleSeed{
		{
			Query:             "What is the capital of France?",
			ReferenceAnswer:   "The capital of France is Paris.",
			ReferenceContexts: []string{"The capital of France is Paris."},
			HasReference:      true,
		},
		{
			Query:             "At what temperature does water boil at sea level?",
			ReferenceAnswer:   "Water boils at 100 degrees Celsius at sea level.",
			ReferenceContexts: []string{"Water boils at 100 degrees Celsius at sea level."},
			HasReference:      true,
		},
		{
			Query:             "When was the Go programming language announced?",
			ReferenceAnswer:   "Go was announced by Google in November 2009.",
			ReferenceContexts: []string{"The Go programming language was announced by Google in November 2009."},
			HasReference:      true,
		},
	}

	return domain.Dataset{
		ID:          "toy-3",
		Name:        "Toy 3",
		Description: "Three labeled examples for smoke tests and batching checks.",
		Labeled:     true,
		Seeds:       seeds,
	}, map[string]string{"toy_facts.txt": source}
}
