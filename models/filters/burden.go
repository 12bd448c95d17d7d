package filters

import (
	"encoding/json"

	"xbrowse/models/constants"
	"xbrowse/models/constants/burden"
	"xbrowse/models/searcherr"
)

// BurdenFilter assigns each individual of interest the allele count class
// their gene-level burden has to fall in.
type BurdenFilter map[string]constants.BurdenClass

func (b BurdenFilter) Validate() error {
	for indivId, class := range b {
		if _, err := burden.CastToBurdenClass(string(class)); err != nil {
			return searcherr.New(searcherr.InvalidFilterSpec, "burden filter for %s: %v", indivId, err)
		}
	}
	return nil
}

func (b BurdenFilter) ToJSON() map[string]interface{} {
	out := make(map[string]interface{}, len(b))
	for indivId, class := range b {
		out[indivId] = string(class)
	}
	return out
}

func BurdenFilterFromJSON(raw map[string]interface{}) (BurdenFilter, error) {
	out := make(BurdenFilter, len(raw))
	for indivId, value := range raw {
		text, ok := value.(string)
		if !ok {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "burden filter for %s: expected a string, got %T", indivId, value)
		}
		class, err := burden.CastToBurdenClass(text)
		if err != nil {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "burden filter for %s: %v", indivId, err)
		}
		out[indivId] = class
	}
	return out, nil
}

func (b *BurdenFilter) UnmarshalJSON(data []byte) error {
	raw, err := bytesToMap(data)
	if err != nil {
		return searcherr.New(searcherr.InvalidFilterSpec, "burden filter: %v", err)
	}
	parsed, err := BurdenFilterFromJSON(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b BurdenFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToJSON())
}
