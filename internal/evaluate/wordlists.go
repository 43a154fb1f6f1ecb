package evaluate

// refusalPhrases indicate the model could not answer from the context.
// Matched case-insensitively as substrings.
var refusalPhrases = []string{
	"i don't know",
	"i cannot",
	"i'm not sure",
	"i do not have access",
	"i don't have enough information",
	"i'm unable to",
	"i am not sure",
	"i am unable",
	"i cannot provide",
	"i don't have information",
	"not in the documentation",
	"not mentioned in",
	"beyond my knowledge",
}

// hallucinationKeywords are out-of-domain terms that never appear in the
// product documentation; their presence means the model drifted.
var hallucinationKeywords = []string{
	"blockchain", "cryptocurrency", "nft", "quantum", "bitcoin",
	"ethereum", "metaverse", "web3", "defi", "dao", "solana",
	"dogecoin", "mining", "token sale", "ico",
}

// stopwords are excluded from the context-overlap check so function words
// don't inflate the ratio.
var stopwords = map[string]struct{}{
	"the": {}, "are": {}, "was": {}, "were": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"shall": {}, "can": {}, "need": {}, "must": {},
	"you": {}, "she": {}, "him": {}, "her": {}, "them": {}, "they": {},
	"your": {}, "his": {}, "its": {}, "our": {}, "their": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "what": {},
	"which": {}, "who": {}, "whom": {},
	"and": {}, "but": {}, "nor": {}, "not": {}, "yet": {}, "both": {},
	"either": {}, "neither": {}, "each": {}, "every": {}, "all": {},
	"any": {}, "few": {}, "more": {}, "most": {}, "other": {}, "some": {},
	"such": {}, "only": {}, "own": {}, "same": {}, "than": {}, "too": {},
	"very": {}, "just": {}, "also": {}, "how": {}, "when": {}, "where": {},
	"why": {},
	"for": {}, "with": {}, "from": {}, "about": {}, "into": {},
	"through": {}, "during": {}, "before": {}, "after": {}, "above": {},
	"below": {}, "between": {}, "under": {}, "again": {}, "further": {},
	"then": {}, "once": {}, "here": {}, "there": {}, "because": {},
	"until": {}, "while": {},
	"based": {}, "provided": {}, "using": {}, "used": {}, "like": {},
	"including": {}, "please": {}, "note": {}, "however": {}, "well": {},
	"per": {},
}
