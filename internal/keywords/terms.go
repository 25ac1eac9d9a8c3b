package keywords

// techTerms is the curated allow-list. A token listed here is always technical.
// Stop words ("go") and single characters ("c") are filtered before this table is
// consulted, so they are left out; "golang" covers Go.
var techTerms = buildTable(map[string][]string{
	"languages": {
		"python", "java", "javascript", "typescript", "golang", "ruby", "rust",
		"scala", "kotlin", "c++", "c#",
	},
	"frameworks": {
		"node", "nodejs", "express", "django", "flask", "fastapi", "spring", "springboot",
		"rails", "react", "vue", "angular", "nextjs", "nuxt", "svelte",
	},
	"cloud": {
		"aws", "azure", "gcp", "kubernetes", "k8s", "docker", "terraform", "ansible", "helm",
		"serverless", "lambda", "ec2", "s3", "rds", "eks", "ecs", "cloudformation",
	},
	"datastores": {
		"postgres", "postgresql", "mysql", "mariadb", "mongodb", "dynamodb", "redis",
		"elastic", "elasticsearch", "kafka", "rabbitmq", "sqs", "sns",
	},
	"ml": {
		"pandas", "numpy", "scikit-learn", "sklearn", "pytorch", "tensorflow", "keras",
		"spark", "hadoop", "airflow", "dbt", "snowflake", "databricks",
	},
	"tooling": {
		"pytest", "unittest", "junit", "maven", "gradle", "webpack", "vite", "babel",
		"eslint", "prettier", "git", "github", "gitlab", "jenkins", "circleci", "travisci",
	},
	"protocols": {
		"grpc", "graphql", "rest", "soap", "http", "https", "websocket", "oauth", "oidc",
	},
	"process": {
		"microservices", "monolith", "ci", "cd", "cicd", "oop", "tdd", "redux", "rxjs",
		"asyncio", "multithreading", "concurrency", "distributed",
	},
})

// digitTerms are identifiers that carry a digit and are still technical.
var digitTerms = buildTable(map[string][]string{
	"aws": {"s3", "ec2", "rds", "sqs", "sns"},
	"k8s": {"k8s"},
})

// acronyms are short well-known technical abbreviations.
var acronyms = buildTable(map[string][]string{
	"acronyms": {"api", "sql", "nosql", "ml", "ai", "nlp", "etl", "sre", "devops", "tls", "ssl", "jwt"},
})

// specialSpellings are technical names that only survive tokenization with symbols.
var specialSpellings = buildTable(map[string][]string{
	"symbols": {"c++", "c#", ".net", "node.js", "next.js"},
})

// canonicalForms maps hyphenated variants to the spelling used for comparison.
var canonicalForms = map[string]string{
	"back-end":   "backend",
	"front-end":  "frontend",
	"full-stack": "fullstack",
}

// domainStopWords are résumé and job-posting filler words.
var domainStopWords = buildTable(map[string][]string{
	"posting": {
		"experience", "experiences", "responsibility", "responsibilities", "requirements",
		"requirement", "work", "works", "company", "role", "roles", "candidate", "candidates",
		"job", "jobs", "team", "teams", "opportunity", "position", "applicant", "applicants",
		"employee", "employees", "employer", "employers", "culture", "stakeholder",
		"stakeholders", "benefits", "salary",
	},
	"titles": {
		"developer", "developers", "engineer", "engineers", "backend", "front-end",
		"frontend", "fullstack", "full-stack",
	},
	"filler": {
		"experienced", "looking", "collaborate", "collaboration", "communication",
		"communications", "results-driven", "detail-oriented", "self-motivated",
		"fast-paced", "cross-functional", "hands-on", "team-player",
	},
})

func buildTable(groups map[string][]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, terms := range groups {
		for _, t := range terms {
			out[t] = struct{}{}
		}
	}
	return out
}
