package api

import (
	"context"                            // Context for Redis operations
	"encoding/json"                      // Ingredient form field decoding
	"net/http"                           // HTTP status codes
	"restaurant_system/internal/apperr"  // Request error taxonomy
	"restaurant_system/internal/domain"  // Importing domain models
	"restaurant_system/internal/storage" // Disk file provider
	"restaurant_system/internal/utils"   // Cache helpers
	"strings"                            // Keyword splitting
	"time"                               // Cache TTL

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Price parsing
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// dishCacheTTL is how long cached dish reads stay fresh
const dishCacheTTL = 60 * time.Second

// dishListCacheKey caches the unfiltered catalog listing
const dishListCacheKey = "dishes:all"

// dishCacheKey is the cache key for a single dish
func dishCacheKey(id string) string {
	return "dish:" + id
}

// DishResponse merges a dish row with its ingredient list
type DishResponse struct {
	domain.Dish
	Ingredients []domain.Ingredient `json:"ingredients"` // Full ingredient list
}

// parseIngredients decodes the multipart "ingredients" field, a JSON array of names
func parseIngredients(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil // Absent list
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, apperr.Validation("Ingredients must be a JSON array of names")
	}
	return names, nil
}

// invalidateDishCache drops the cached entries a dish mutation makes stale
func invalidateDishCache(rdb *redis.Client, id string) {
	_ = utils.DeleteCache(context.Background(), rdb, dishCacheKey(id), dishListCacheKey)
}

// CreateDishHandler persists a new dish with its image and ingredient list
func CreateDishHandler(db *gorm.DB, store *storage.DiskStorage, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		name := c.PostForm("name") // Dish name is mandatory
		if name == "" {
			apperr.Respond(c, apperr.Validation("Name is required"))
			return
		}
		price, err := decimal.NewFromString(c.PostForm("price")) // Parse the price
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid price"))
			return
		}
		ingredients, err := parseIngredients(c.PostForm("ingredients")) // Ingredient names
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		file, err := c.FormFile("image") // The dish photo is mandatory on create
		if err != nil {
			apperr.Respond(c, apperr.Validation("Image file is required"))
			return
		}
		filename, err := store.SaveFile(file) // Persist the image first
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		dish := domain.Dish{
			Name:        name,                      // Dish name
			Description: c.PostForm("description"), // Dish description
			Category:    c.PostForm("category"),    // Dish category
			Price:       price,                     // Dish price
			Image:       filename,                  // Stored image filename
			CreatedBy:   userID,                    // Creator
			UpdatedBy:   userID,                    // Initial updater
		}
		// Dish row and ingredient rows are written atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&dish).Error; err != nil {
				return err
			}
			rows := make([]domain.Ingredient, 0, len(ingredients))
			for _, ing := range ingredients {
				rows = append(rows, domain.Ingredient{DishID: dish.ID, Name: ing, CreatedBy: userID})
			}
			if len(rows) == 0 {
				return nil
			}
			return tx.Create(&rows).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Creator
				"name":    name,        // Dish name
				"error":   err.Error(), // Error message
			}).Error("Failed to create dish")
			apperr.Respond(c, err)
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, dishListCacheKey) // Drop the stale catalog listing
		c.JSON(http.StatusCreated, gin.H{"id": dish.ID})
	}
}

// GetDishHandler returns a dish merged with its full ingredient list
func GetDishHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ctx := context.Background() // Context for Redis operations
		var resp DishResponse
		found, err := utils.GetCache(ctx, rdb, dishCacheKey(id), &resp) // Try to get from cache
		if err == nil && found {
			c.JSON(http.StatusOK, resp) // Return cached dish
			return
		}
		var dish domain.Dish // Fetch dish from database
		if err := db.First(&dish, id).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Dish not found"))
			return
		}
		ingredients := make([]domain.Ingredient, 0) // Fetch its ingredients
		if err := db.Where("dish_id = ?", dish.ID).Find(&ingredients).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		resp = DishResponse{Dish: dish, Ingredients: ingredients}
		_ = utils.SetCache(ctx, rdb, dishCacheKey(id), resp, dishCacheTTL) // Cache the dish
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateDishHandler merges supplied fields over an existing dish, optionally
// replacing its image and its ingredient list
func UpdateDishHandler(db *gorm.DB, store *storage.DiskStorage, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		var dish domain.Dish // Load the existing dish
		if err := db.First(&dish, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Dish not found"))
			return
		}
		// Merge only the supplied scalar fields
		if v, ok := c.GetPostForm("name"); ok {
			dish.Name = v
		}
		if v, ok := c.GetPostForm("description"); ok {
			dish.Description = v
		}
		if v, ok := c.GetPostForm("category"); ok {
			dish.Category = v
		}
		if v, ok := c.GetPostForm("price"); ok {
			price, err := decimal.NewFromString(v)
			if err != nil {
				apperr.Respond(c, apperr.Validation("Invalid price"))
				return
			}
			dish.Price = price
		}
		// A new image replaces the stored file
		if file, err := c.FormFile("image"); err == nil {
			if dish.Image != "" {
				if err := store.DeleteFile(dish.Image); err != nil {
					apperr.Respond(c, err)
					return
				}
			}
			filename, err := store.SaveFile(file)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			dish.Image = filename
		}
		rawIngredients, replaceIngredients := c.GetPostForm("ingredients")
		names, err := parseIngredients(rawIngredients)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		dish.UpdatedBy = userID // Always stamp the updater
		// Scalar update and ingredient replacement are written atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			if replaceIngredients {
				// A supplied list fully replaces the child rows
				if err := tx.Where("dish_id = ?", dish.ID).Delete(&domain.Ingredient{}).Error; err != nil {
					return err
				}
				rows := make([]domain.Ingredient, 0, len(names))
				for _, ing := range names {
					rows = append(rows, domain.Ingredient{DishID: dish.ID, Name: ing, CreatedBy: userID})
				}
				if len(rows) > 0 {
					if err := tx.Create(&rows).Error; err != nil {
						return err
					}
				}
			}
			return tx.Save(&dish).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Updater
				"dish_id": dish.ID,     // Dish ID
				"error":   err.Error(), // Error message
			}).Error("Failed to update dish")
			apperr.Respond(c, err)
			return
		}
		invalidateDishCache(rdb, c.Param("id")) // Drop stale cache entries
		c.Status(http.StatusOK)
	}
}

// DeleteDishHandler removes a dish, its stored image and its ingredient rows
func DeleteDishHandler(db *gorm.DB, store *storage.DiskStorage, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dish domain.Dish // Load the existing dish
		if err := db.First(&dish, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Dish not found"))
			return
		}
		// Remove the stored image before the rows
		if dish.Image != "" {
			if err := store.DeleteFile(dish.Image); err != nil {
				apperr.Respond(c, err)
				return
			}
		}
		// Children first, then the dish row
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("dish_id = ?", dish.ID).Delete(&domain.Ingredient{}).Error; err != nil {
				return err
			}
			return tx.Delete(&dish).Error
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		invalidateDishCache(rdb, c.Param("id")) // Drop stale cache entries
		c.Status(http.StatusOK)
	}
}

// SearchDishesHandler lists dishes ordered by name, each annotated with its
// ingredients. With a search query, a dish matches when any keyword is a
// substring of its name, its description or any of its ingredient names.
func SearchDishesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := strings.TrimSpace(c.Query("search"))
		ctx := context.Background() // Context for Redis operations
		if search == "" {
			// The unfiltered catalog is the hot path, cache it
			var cached []DishResponse
			found, err := utils.GetCache(ctx, rdb, dishListCacheKey, &cached)
			if err == nil && found {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		query := db.Model(&domain.Dish{}).Select("dishes.*").Order("dishes.name")
		if search != "" {
			keywords := strings.Fields(search) // Whitespace-split keywords
			conds := make([]string, 0, len(keywords)*3)
			args := make([]any, 0, len(keywords)*3)
			for _, kw := range keywords {
				pattern := "%" + kw + "%"
				conds = append(conds, "dishes.name LIKE ?", "dishes.description LIKE ?", "ingredients.name LIKE ?")
				args = append(args, pattern, pattern, pattern)
			}
			// Join duplicates are collapsed by grouping on the dish id
			query = query.
				Joins("LEFT JOIN ingredients ON ingredients.dish_id = dishes.id").
				Where(strings.Join(conds, " OR "), args...).
				Group("dishes.id")
		}
		var dishes []domain.Dish
		if err := query.Find(&dishes).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		// One query for the ingredients of the whole result set
		ids := make([]uint, 0, len(dishes))
		for _, d := range dishes {
			ids = append(ids, d.ID)
		}
		var ingredients []domain.Ingredient
		if len(ids) > 0 {
			if err := db.Where("dish_id IN ?", ids).Find(&ingredients).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
		}
		byDish := make(map[uint][]domain.Ingredient, len(dishes))
		for _, ing := range ingredients {
			byDish[ing.DishID] = append(byDish[ing.DishID], ing)
		}
		resp := make([]DishResponse, 0, len(dishes))
		for _, d := range dishes {
			list := byDish[d.ID]
			if list == nil {
				list = make([]domain.Ingredient, 0)
			}
			resp = append(resp, DishResponse{Dish: d, Ingredients: list})
		}
		if search == "" {
			_ = utils.SetCache(ctx, rdb, dishListCacheKey, resp, dishCacheTTL) // Cache the listing
		}
		c.JSON(http.StatusOK, resp)
	}
}
