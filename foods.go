package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/hayl-fuel-api/nutrition"
)

// parseItemType accepts "ingredient" or "dish".
func parseItemType(s string) (nutrition.ItemType, bool) {
	switch t := nutrition.ItemType(strings.ToLower(s)); t {
	case nutrition.ItemIngredient, nutrition.ItemDish:
		return t, true
	}
	return "", false
}

// jsonArg encodes v for a jsonb parameter. Queries cast the text with ::jsonb.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

/* ─── Catalog ─────────────────────────────────────────────────────────── */

// loadCatalog fetches the referenced ingredients and dishes into an in-memory
// catalog. Ids that do not exist are simply absent from it.
func loadCatalog(q querier, ctx context.Context, ingredientIDs, dishIDs []int64) (nutrition.MapCatalog, error) {
	cat := nutrition.MapCatalog{
		Ingredients: map[int64]nutrition.Ingredient{},
		Dishes:      map[int64]nutrition.Dish{},
	}
	if len(ingredientIDs) > 0 {
		rows, err := queryMany[ingredientRow](q, ctx,
			"SELECT * FROM ingredients WHERE id = ANY(@ids)",
			pgx.NamedArgs{"ids": ingredientIDs})
		if err != nil {
			return cat, fmt.Errorf("load ingredients: %w", err)
		}
		for _, r := range rows {
			cat.Ingredients[r.ID] = r.toIngredient()
		}
	}
	if len(dishIDs) > 0 {
		rows, err := queryMany[dishRow](q, ctx,
			"SELECT * FROM dishes WHERE id = ANY(@ids)",
			pgx.NamedArgs{"ids": dishIDs})
		if err != nil {
			return cat, fmt.Errorf("load dishes: %w", err)
		}
		for _, r := range rows {
			cat.Dishes[r.ID] = r.toDish()
		}
	}
	return cat, nil
}

// mealCatalogIDs splits meal component references by item type.
func mealCatalogIDs(components []nutrition.MealComponent) (ingredientIDs, dishIDs []int64) {
	for _, comp := range components {
		switch comp.ItemType {
		case nutrition.ItemIngredient:
			ingredientIDs = append(ingredientIDs, comp.ItemID)
		case nutrition.ItemDish:
			dishIDs = append(dishIDs, comp.ItemID)
		}
	}
	return ingredientIDs, dishIDs
}

// lookupFood fetches a single catalog item. Returns pgx.ErrNoRows (wrapped)
// when it does not exist.
func lookupFood(q querier, ctx context.Context, itemType nutrition.ItemType, id int64) (nutrition.FoodItem, error) {
	var ingredientIDs, dishIDs []int64
	if itemType == nutrition.ItemDish {
		dishIDs = []int64{id}
	} else {
		ingredientIDs = []int64{id}
	}
	cat, err := loadCatalog(q, ctx, ingredientIDs, dishIDs)
	if err != nil {
		return nutrition.FoodItem{}, err
	}
	item, ok := cat.Lookup(itemType, id)
	if !ok {
		return nutrition.FoodItem{}, fmt.Errorf("%s %d: %w", itemType, id, pgx.ErrNoRows)
	}
	return item, nil
}

/* ─── Food lookup / preview ───────────────────────────────────────────── */

// getFood returns one ingredient or dish.
// GET /api/foods/:type/:id where type is "ingredient" or "dish".
func (h *Handler) getFood(c *gin.Context) {
	itemType, ok := parseItemType(c.Param("type"))
	if !ok {
		apiError(c, http.StatusBadRequest, "type must be one of: ingredient, dish")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := lookupFood(h.db, c, itemType, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food not found")
			return
		}
		h.logFor(c, "getFood").Error("food lookup failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch food")
		return
	}

	if item.Type == nutrition.ItemDish {
		c.JSON(http.StatusOK, gin.H{"type": item.Type, "item": item.Dish})
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": item.Type, "item": item.Ingredient})
}

// resolveFoodRequest is the request body for POST /api/foods/resolve.
type resolveFoodRequest struct {
	ItemType string  `json:"item_type"`
	ItemID   int64   `json:"item_id"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

// resolveFood previews the grams and macros of an amount of a food without
// logging anything. POST /api/foods/resolve.
func (h *Handler) resolveFood(c *gin.Context) {
	var body resolveFoodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	itemType, ok := parseItemType(body.ItemType)
	if !ok {
		apiError(c, http.StatusBadRequest, "item_type must be one of: ingredient, dish")
		return
	}
	unit, ok := nutrition.ParseUnit(body.Unit)
	if !ok {
		apiError(c, http.StatusBadRequest, "unknown unit")
		return
	}
	if body.ItemID <= 0 || body.Amount <= 0 {
		apiError(c, http.StatusBadRequest, "item_id and amount must be positive")
		return
	}

	item, err := lookupFood(h.db, c, itemType, body.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food not found")
			return
		}
		h.logFor(c, "resolveFood").Error("food lookup failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch food")
		return
	}

	r, ok := item.Resolve(body.Amount, unit)
	if !ok {
		h.logFor(c, "resolveFood").Warn("malformed food item", "item_type", itemType, "item_id", body.ItemID)
		apiError(c, http.StatusUnprocessableEntity, "food item could not be resolved")
		return
	}
	r = r.Rounded()

	c.JSON(http.StatusOK, gin.H{
		"item_type": itemType,
		"item_id":   body.ItemID,
		"name":      item.Name(),
		"amount":    body.Amount,
		"unit":      unit,
		"grams":     r.Grams,
		"macros":    r.Macros,
	})
}

/* ─── Dish authoring ──────────────────────────────────────────────────── */

// createDishRequest is the request body for POST /api/dishes.
type createDishRequest struct {
	Name                string                    `json:"name"`
	Components          []nutrition.DishComponent `json:"components"`
	DefaultServingGrams float64                   `json:"default_serving_grams"`
	Measures            []nutrition.MeasureDef    `json:"measures"`
}

// normalizeDishRequest canonicalizes units and returns a client-facing message
// for the first invalid field, or "" when the request is acceptable.
func normalizeDishRequest(body *createDishRequest) string {
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return "name is required"
	}
	if len(body.Components) == 0 {
		return "at least one component is required"
	}
	for i := range body.Components {
		comp := &body.Components[i]
		unit, ok := nutrition.ParseUnit(string(comp.Unit))
		if !ok {
			return fmt.Sprintf("component %d: unknown unit", i)
		}
		if comp.IngredientID <= 0 || comp.Amount <= 0 {
			return fmt.Sprintf("component %d: ingredient_id and amount must be positive", i)
		}
		comp.Unit = unit
	}
	if body.DefaultServingGrams < 0 {
		return "default_serving_grams must not be negative"
	}
	for i := range body.Measures {
		unit, ok := nutrition.ParseUnit(string(body.Measures[i].Unit))
		if !ok || body.Measures[i].Grams <= 0 {
			return fmt.Sprintf("measure %d: unit must be known and grams positive", i)
		}
		body.Measures[i].Unit = unit
	}
	return ""
}

// createDish composes a dish from catalog ingredients and stores it with its
// per-100g snapshot. Unknown ingredient ids are skipped and reported.
// POST /api/dishes.
func (h *Handler) createDish(c *gin.Context) {
	userID := c.GetInt("user_id")
	log := h.logFor(c, "createDish")

	var body createDishRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := normalizeDishRequest(&body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	ids := make([]int64, 0, len(body.Components))
	for _, comp := range body.Components {
		ids = append(ids, comp.IngredientID)
	}
	cat, err := loadCatalog(h.db, c, ids, nil)
	if err != nil {
		log.Error("catalog load failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to load ingredients")
		return
	}

	snap := nutrition.ComposeDish(body.Components, body.DefaultServingGrams, cat)
	if snap.TotalGrams <= 0 {
		apiError(c, http.StatusUnprocessableEntity, "no component could be resolved")
		return
	}

	row, err := h.insertDish(c, userID, body, snap)
	if err != nil {
		log.Error("dish insert failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to create dish")
		return
	}

	log.Info("dish created", "dish_id", row.ID, "skipped", len(snap.Skipped))
	c.JSON(http.StatusCreated, gin.H{"dish": row.toDish(), "snapshot": snap})
}

// insertDish stores a composed dish with its per-100g snapshot.
func (h *Handler) insertDish(ctx context.Context, userID int, body createDishRequest, snap nutrition.DishSnapshot) (dishRow, error) {
	if body.Measures == nil {
		body.Measures = []nutrition.MeasureDef{}
	}
	components, err := jsonArg(body.Components)
	if err != nil {
		return dishRow{}, err
	}
	per100, err := jsonArg(snap.Per100g)
	if err != nil {
		return dishRow{}, err
	}
	measures, err := jsonArg(body.Measures)
	if err != nil {
		return dishRow{}, err
	}
	return queryOne[dishRow](h.db, ctx,
		`INSERT INTO dishes (name, components, default_serving_grams, per_100g, measures, created_by)
		 VALUES (@name, @components::jsonb, @servingGrams, @per100g::jsonb, @measures::jsonb, @userID)
		 RETURNING *`,
		pgx.NamedArgs{
			"name":         body.Name,
			"components":   components,
			"servingGrams": body.DefaultServingGrams,
			"per100g":      per100,
			"measures":     measures,
			"userID":       userID,
		})
}

/* ─── Ingredient seeding ──────────────────────────────────────────────── */

// importIngredients bulk-loads validated ingredient records. Requires the
// seed capability (users.is_admin). The batch is inserted in one transaction.
// POST /api/admin/ingredients/import. Body: { "ingredients": [...] }.
func (h *Handler) importIngredients(c *gin.Context) {
	log := h.logFor(c, "importIngredients")

	var body struct {
		Ingredients []nutrition.Ingredient `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	records, err := nutrition.SeedIngredients(authorization(c), body.Ingredients)
	if err != nil {
		switch {
		case errors.Is(err, nutrition.ErrUnauthorized):
			apiError(c, http.StatusForbidden, "seeding requires admin")
		case errors.Is(err, nutrition.ErrInvalidIngredient):
			apiError(c, http.StatusBadRequest, err.Error())
		default:
			log.Error("seed validation failed", "error", err)
			apiError(c, http.StatusInternalServerError, "failed to validate ingredients")
		}
		return
	}
	if len(records) == 0 {
		apiError(c, http.StatusBadRequest, "no ingredients to import")
		return
	}

	if err := h.insertIngredients(c, records); err != nil {
		log.Error("ingredient import failed", "error", err, "count", len(records))
		apiError(c, http.StatusInternalServerError, "failed to import ingredients")
		return
	}

	log.Info("ingredients imported", "count", len(records))
	c.JSON(http.StatusCreated, gin.H{"imported": len(records), "ingredients": records})
}

// insertIngredients writes records in one transaction, filling in their ids.
func (h *Handler) insertIngredients(ctx context.Context, records []nutrition.Ingredient) error {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range records {
		r := &records[i]
		measures := r.Measures
		if measures == nil {
			measures = []nutrition.MeasureDef{}
		}
		measuresJSON, err := jsonArg(measures)
		if err != nil {
			return err
		}
		var servingSize, density *float64
		if r.ServingSizeGrams > 0 {
			servingSize = &r.ServingSizeGrams
		}
		if r.Density > 0 {
			density = &r.Density
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO ingredients
				(name, calories, protein, carbs, fats, fiber, basis, serving_size_grams, density, measures, category, is_local)
			 VALUES
				(@name, @calories, @protein, @carbs, @fats, @fiber, @basis, @servingSize, @density, @measures::jsonb, @category, @isLocal)
			 RETURNING id`,
			pgx.NamedArgs{
				"name":        r.Name,
				"calories":    r.Calories,
				"protein":     r.Protein,
				"carbs":       r.Carbs,
				"fats":        r.Fats,
				"fiber":       r.Fiber,
				"basis":       string(r.Basis),
				"servingSize": servingSize,
				"density":     density,
				"measures":    measuresJSON,
				"category":    r.Category,
				"isLocal":     r.IsLocal,
			}).Scan(&r.ID)
		if err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
