package seed

import "lifeway-backend/internal/catalog"

type samplePost struct {
	Title    string
	Summary  string
	Body     string
	Category string
	Tags     []string
}

var sampleCategories = []struct{ Name, Description string }{
	{"Vistos", "Tipos de visto e processos consulares"},
	{"Educação", "Escolas, universidades e cursos nos Estados Unidos"},
	{"Carreira", "Trabalho e empresas que patrocinam vistos"},
	{"Moradia", "Cidades e custo de vida"},
}

var sampleTags = []string{"EB-2 NIW", "F-1", "H-1B", "Green Card", "Custo de vida", "Inglês"}

var samplePosts = []samplePost{
	{
		Title:    "Guia completo do visto EB-2 NIW",
		Summary:  "Requisitos, documentos e prazos do National Interest Waiver.",
		Body:     "O EB-2 NIW permite que profissionais qualificados solicitem o green card sem oferta de emprego.",
		Category: "Vistos",
		Tags:     []string{"EB-2 NIW", "Green Card"},
	},
	{
		Title:    "Como escolher uma universidade americana",
		Summary:  "Rankings, custos e bolsas para estudantes brasileiros.",
		Body:     "Compare programas, localização e oportunidades de estágio antes de aplicar.",
		Category: "Educação",
		Tags:     []string{"F-1"},
	},
	{
		Title:    "Visto de estudante F-1 passo a passo",
		Summary:  "Do I-20 à entrevista no consulado.",
		Body:     "Depois de aceito pela escola, pague a taxa SEVIS e agende a entrevista.",
		Category: "Vistos",
		Tags:     []string{"F-1", "Inglês"},
	},
	{
		Title:    "Empresas que patrocinam H-1B",
		Summary:  "Setores que mais contratam estrangeiros.",
		Body:     "Tecnologia, saúde e engenharia concentram a maior parte dos pedidos H-1B.",
		Category: "Carreira",
		Tags:     []string{"H-1B"},
	},
	{
		Title:    "Melhores cidades para brasileiros na Flórida",
		Summary:  "Orlando, Miami e Tampa comparadas.",
		Body:     "Clima, comunidade brasileira e mercado de trabalho variam bastante entre as cidades.",
		Category: "Moradia",
		Tags:     []string{"Custo de vida"},
	},
	{
		Title:    "Cursos de inglês para imigrantes",
		Summary:  "Programas ESL gratuitos e pagos.",
		Body:     "Muitas escolas públicas oferecem ESL para adultos a custo baixo.",
		Category: "Educação",
		Tags:     []string{"Inglês"},
	},
}

var sampleCatalog = map[string][]catalog.Row{
	"cities": {
		{"id": "city-orlando", "name": "Orlando", "state": "FL", "population": 316081, "is_featured": true, "is_capital": false},
		{"id": "city-miami", "name": "Miami", "state": "FL", "population": 449514, "is_featured": true, "is_capital": false},
		{"id": "city-austin", "name": "Austin", "state": "TX", "population": 979882, "is_featured": true, "is_capital": true},
		{"id": "city-boston", "name": "Boston", "state": "MA", "population": 650706, "is_featured": false, "is_capital": true},
		{"id": "city-newark", "name": "Newark", "state": "NJ", "population": 311549, "is_featured": false, "is_capital": false},
	},
	"schools": {
		{"id": "school-lincoln", "name": "Lincoln High School", "city": "Orlando", "state": "FL", "is_public": true, "has_esl": true},
		{"id": "school-bay", "name": "Bay Academy", "city": "Tampa", "state": "FL", "is_public": false, "has_esl": true},
		{"id": "school-hill", "name": "Hillside Prep", "city": "Boston", "state": "MA", "is_public": false, "has_esl": false},
	},
	"universities": {
		{"id": "uni-ucf", "name": "University of Central Florida", "city": "Orlando", "state": "FL", "ranking": 124, "is_public": true, "is_featured": true},
		{"id": "uni-fiu", "name": "Florida International University", "city": "Miami", "state": "FL", "ranking": 151, "is_public": true, "is_featured": false},
		{"id": "uni-bu", "name": "Boston University", "city": "Boston", "state": "MA", "ranking": 43, "is_public": false, "is_featured": true},
	},
	"professional_courses": {
		{"id": "course-pm", "name": "Gestão de Projetos (PMP)", "provider": "PMI", "area": "Negócios", "duration_weeks": 12, "is_online": true, "is_featured": true},
		{"id": "course-nursing", "name": "Certified Nursing Assistant", "provider": "Red Cross", "area": "Saúde", "duration_weeks": 8, "is_online": false, "is_featured": false},
		{"id": "course-data", "name": "Análise de Dados", "provider": "Google", "area": "Tecnologia", "duration_weeks": 24, "is_online": true, "is_featured": true},
	},
	"empresa": {
		{"id": "emp-techflow", "nome": "TechFlow Inc", "setor": "Tecnologia", "cidade": "Austin", "estado": "TX", "ativo": true, "patrocina_visto": true},
		{"id": "emp-saude", "nome": "Sunshine Health", "setor": "Saúde", "cidade": "Orlando", "estado": "FL", "ativo": true, "patrocina_visto": true},
		{"id": "emp-build", "nome": "Atlantic Builders", "setor": "Construção", "cidade": "Miami", "estado": "FL", "ativo": true, "patrocina_visto": false},
	},
}
