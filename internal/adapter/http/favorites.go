package http

// defaultFavorites is the curated list of French cities offered by the
// dashboard before the user has searched for anything.
var defaultFavorites = []string{
	"Paris",
	"Marseille",
	"Lyon",
	"Toulouse",
	"Nice",
	"Nantes",
	"Montpellier",
	"Strasbourg",
	"Bordeaux",
	"Lille",
	"Rennes",
	"Reims",
	"Le Havre",
	"Saint-Étienne",
	"Toulon",
	"Grenoble",
	"Dijon",
	"Angers",
	"Nîmes",
	"Villeurbanne",
	"Clermont-Ferrand",
	"Le Mans",
	"Aix-en-Provence",
	"Brest",
	"Tours",
	"Amiens",
	"Limoges",
	"Annecy",
	"Perpignan",
	"Metz",
	"Besançon",
	"Orléans",
	"Caen",
	"Rouen",
	"Mulhouse",
	"Nancy",
	"Avignon",
	"Chambéry",
	"Quimper",
	"Ajaccio",
	"Biarritz",
	"La Rochelle",
	"Saint-Malo",
}
