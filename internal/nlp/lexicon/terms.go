// Package lexicon holds the curated clinical vocabularies and the lexical
// span finder that locates term mentions in note text.
package lexicon

import "sort"

// DefaultProblemTerms lists common diseases, symptoms, and injuries scanned
// as PROBLEM candidates.  Multi-word terms are listed as written; the finder
// matches them case-insensitively at word boundaries.
var DefaultProblemTerms = []string{
	// Diseases
	"hypertension", "diabetes", "asthma", "copd", "pneumonia",
	"bronchitis", "influenza", "arthritis", "osteoarthritis",
	"rheumatoid arthritis", "migraine", "angina", "arrhythmia",
	"atrial fibrillation", "heart failure", "myocardial infarction",
	"chronic kidney disease", "renal failure", "cirrhosis", "hepatitis",
	"pancreatitis", "colitis", "gerd", "reflux", "gastritis",
	"diverticulitis", "appendicitis", "cholecystitis", "hypothyroidism",
	"hyperthyroidism", "anemia", "pulmonary embolism",
	"deep vein thrombosis", "depression", "anxiety", "dementia",
	"stroke", "seizure", "epilepsy", "hyperlipidemia", "obesity",

	// Symptoms
	"chest pain", "chest tightness", "abdominal pain", "back pain",
	"headache", "dizziness", "nausea", "vomiting", "diarrhea",
	"constipation", "fever", "chills", "cough", "dyspnea",
	"shortness of breath", "fatigue", "weakness", "syncope",
	"confusion", "edema", "rash", "pruritus", "jaundice",
	"tachycardia", "bradycardia", "hypotension", "wheezing",

	// Injuries
	"fracture", "dislocation", "sprain", "laceration", "contusion",
}

// DefaultMedicationTerms lists common drug names scanned as MEDICATION
// candidates.
var DefaultMedicationTerms = []string{
	// Cardiovascular
	"aspirin", "clopidogrel", "warfarin", "heparin", "enoxaparin",
	"lisinopril", "enalapril", "ramipril", "losartan", "valsartan",
	"amlodipine", "metoprolol", "atenolol", "carvedilol", "diltiazem",
	"digoxin", "furosemide", "hydrochlorothiazide", "spironolactone",
	"atorvastatin", "simvastatin", "pravastatin", "rosuvastatin",

	// Diabetes
	"metformin", "glyburide", "glipizide", "insulin", "empagliflozin",

	// Respiratory
	"albuterol", "ipratropium", "fluticasone", "montelukast",
	"prednisone", "methylprednisolone",

	// Antibiotics
	"amoxicillin", "azithromycin", "ciprofloxacin", "levofloxacin",
	"doxycycline", "cephalexin", "ceftriaxone", "vancomycin",
	"penicillin", "metronidazole",

	// Pain / anti-inflammatory
	"acetaminophen", "ibuprofen", "naproxen", "meloxicam", "tramadol",
	"oxycodone", "hydrocodone", "morphine", "codeine",

	// GI
	"omeprazole", "pantoprazole", "lansoprazole", "famotidine",
	"ondansetron", "metoclopramide",

	// Psych
	"sertraline", "escitalopram", "fluoxetine", "citalopram",
	"duloxetine", "venlafaxine", "bupropion", "trazodone",
	"lorazepam", "alprazolam", "clonazepam", "diazepam", "zolpidem",

	// Other
	"levothyroxine", "gabapentin",
}

// problemQualifiers expand the problem vocabulary with common severity and
// chronicity prefixes ("chronic asthma", "acute pancreatitis", ...).
var problemQualifiers = []string{"acute", "chronic", "severe", "mild", "moderate", "recurrent"}

// ExpandProblemTerms returns terms plus every qualifier-prefixed variant,
// sorted longest-first so multi-word variants are matched before their bare
// forms.
func ExpandProblemTerms(terms []string) []string {
	out := make([]string, 0, len(terms)*(len(problemQualifiers)+1))
	out = append(out, terms...)
	for _, t := range terms {
		for _, q := range problemQualifiers {
			out = append(out, q+" "+t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// HighConfidenceProblems are clinically unambiguous problem terms exempt
// from the history cutoff under the strict-lite profile and from the
// positive-context requirement.
var HighConfidenceProblems = map[string]bool{
	"hypertension":        true,
	"diabetes":            true,
	"asthma":              true,
	"copd":                true,
	"pneumonia":           true,
	"atrial fibrillation": true,
	"heart failure":       true,
	"hyperlipidemia":      true,
	"hypothyroidism":      true,
	"epilepsy":            true,
}

// ProblemStopwords are normalized terms never kept as PROBLEM entities.
var ProblemStopwords = map[string]bool{
	"history": true,
	"patient": true,
	"plan":    true,
	"normal":  true,
	"stable":  true,
	"status":  true,
}

// MedicationStopwords are normalized terms never kept as MEDICATION entities.
var MedicationStopwords = map[string]bool{
	"medications": true,
	"medication":  true,
	"dose":        true,
	"tablet":      true,
	"daily":       true,
	"prn":         true,
}

// DrugNameSuffixes mark a term as a recognizable drug by its ending.
var DrugNameSuffixes = []string{
	"pril", "sartan", "statin", "olol", "prazole", "dazole", "cillin",
}

// GenericROSTerms are review-of-systems boilerplate symptoms that are
// suppressed inside ROS sections without positive context, even under the
// strict-lite profile.
var GenericROSTerms = map[string]bool{
	"fever":     true,
	"nausea":    true,
	"vomiting":  true,
	"headache":  true,
	"dizziness": true,
}

// ClinicalAffixes are word fragments that mark a term as clinical enough to
// skip the positive-context requirement ("gastritis", "myalgia", "anemia").
var ClinicalAffixes = []string{"itis", "algia", "emia", "osis", "pathy"}
